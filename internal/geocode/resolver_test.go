package geocode

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakePrimary struct {
	city    string
	country string
	err     error
	calls   int
}

func (f *fakePrimary) ResolveLocation(context.Context, float64, float64) (string, string, error) {
	f.calls++
	return f.city, f.country, f.err
}

type fakeSecondary struct {
	result *ReverseResult
	err    error
	calls  int
}

func (f *fakeSecondary) Reverse(context.Context, float64, float64) (*ReverseResult, error) {
	f.calls++
	return f.result, f.err
}

func TestResolvePrimaryWins(t *testing.T) {
	primary := &fakePrimary{city: "Bergen", country: "Norway"}
	secondary := &fakeSecondary{}
	r := NewResolver(primary, secondary, nil)

	name := r.ResolvePlaceName(context.Background(), 60.39, 5.32)
	if name != "Bergen" {
		t.Errorf("name = %q, want Bergen", name)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary calls = %d, want 0 when primary wins", secondary.calls)
	}
}

func TestResolvePrimaryUnknownFallsBack(t *testing.T) {
	primary := &fakePrimary{city: UnknownPlace}
	secondary := &fakeSecondary{
		result: &ReverseResult{Address: ReverseAddress{City: "Springfield"}},
	}
	r := NewResolver(primary, secondary, nil)

	name := r.ResolvePlaceName(context.Background(), 44.04, -123.02)
	if name != "Springfield" {
		t.Errorf("name = %q, want Springfield", name)
	}
}

func TestResolvePrimaryErrorFallsBack(t *testing.T) {
	primary := &fakePrimary{err: errors.New("gateway down")}
	secondary := &fakeSecondary{
		result: &ReverseResult{Address: ReverseAddress{Town: "Voss"}},
	}
	r := NewResolver(primary, secondary, nil)

	name := r.ResolvePlaceName(context.Background(), 60.63, 6.42)
	if name != "Voss" {
		t.Errorf("name = %q, want Voss", name)
	}
}

func TestResolveBothFailSentinel(t *testing.T) {
	primary := &fakePrimary{err: errors.New("gateway down")}
	secondary := &fakeSecondary{err: errors.New("service down")}
	r := NewResolver(primary, secondary, nil)

	name := r.ResolvePlaceName(context.Background(), 1, 1)
	if name == "" {
		t.Fatal("sentinel must be non-empty")
	}
	if name != UnknownLocation {
		t.Errorf("name = %q, want %q", name, UnknownLocation)
	}
}

func TestResolveInvalidCoordinatesSkipSecondaryCall(t *testing.T) {
	primary := &fakePrimary{err: errors.New("gateway down")}
	secondary := &fakeSecondary{
		result: &ReverseResult{Address: ReverseAddress{City: "Nowhere"}},
	}
	r := NewResolver(primary, secondary, nil)

	name := r.ResolvePlaceName(context.Background(), math.NaN(), 200)
	if name != UnknownLocation {
		t.Errorf("name = %q, want %q", name, UnknownLocation)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary calls = %d, want 0 for malformed coordinates", secondary.calls)
	}
}

func TestResolveCityAndCountry(t *testing.T) {
	t.Run("primary supplies country", func(t *testing.T) {
		r := NewResolver(&fakePrimary{city: "Bergen", country: "Norway"}, &fakeSecondary{}, nil)
		city, country := r.ResolveCityAndCountry(context.Background(), 60.39, 5.32)
		if city != "Bergen" || country != "Norway" {
			t.Errorf("got %q, %q, want Bergen, Norway", city, country)
		}
	})

	t.Run("secondary supplies country", func(t *testing.T) {
		primary := &fakePrimary{city: UnknownPlace}
		secondary := &fakeSecondary{
			result: &ReverseResult{Address: ReverseAddress{Village: "Flam", Country: "Norway"}},
		}
		r := NewResolver(primary, secondary, nil)
		city, country := r.ResolveCityAndCountry(context.Background(), 60.86, 7.11)
		if city != "Flam" || country != "Norway" {
			t.Errorf("got %q, %q, want Flam, Norway", city, country)
		}
	})

	t.Run("both fail", func(t *testing.T) {
		r := NewResolver(&fakePrimary{err: errors.New("x")}, &fakeSecondary{err: errors.New("y")}, nil)
		city, country := r.ResolveCityAndCountry(context.Background(), 1, 1)
		if city != UnknownLocation || country != "" {
			t.Errorf("got %q, %q, want %q and empty", city, country, UnknownLocation)
		}
	})
}

func TestBestNamePriority(t *testing.T) {
	cases := []struct {
		name   string
		result ReverseResult
		want   string
	}{
		{
			name:   "city beats town",
			result: ReverseResult{Address: ReverseAddress{City: "Oslo", Town: "Asker"}},
			want:   "Oslo",
		},
		{
			name:   "town beats village",
			result: ReverseResult{Address: ReverseAddress{Town: "Asker", Village: "Heggedal"}},
			want:   "Asker",
		},
		{
			name:   "hamlet over municipality",
			result: ReverseResult{Address: ReverseAddress{Hamlet: "Solvorn", Municipality: "Luster"}},
			want:   "Solvorn",
		},
		{
			name:   "county as last address field",
			result: ReverseResult{Address: ReverseAddress{County: "Vestland"}},
			want:   "Vestland",
		},
		{
			name:   "display name first segment",
			result: ReverseResult{DisplayName: "Grünerløkka, Oslo, Norway"},
			want:   "Grünerløkka",
		},
		{
			name:   "nothing usable",
			result: ReverseResult{},
			want:   "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bestName(&tc.result); got != tc.want {
				t.Errorf("bestName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tc := range cases {
		if got := ValidCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
		}
	}
}
