package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestFlexIntDecoding(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`7`, 7},
		{`"7"`, 7},
		{`"abc"`, 0},
		{`null`, 0},
		{`""`, 0},
		{`3.9`, 3},
	}
	for _, tc := range cases {
		var f FlexInt
		if err := json.Unmarshal([]byte(tc.in), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if int(f) != tc.want {
			t.Errorf("FlexInt(%s) = %d, want %d", tc.in, f, tc.want)
		}
	}
}

func TestGetTrendingFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/feed/trending" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Error("lat/lon query params missing")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"items": [{"id": "p1", "content": "hi", "upvotes": "12", "location": "Bergen"}],
			"location": "Bergen"
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok", 5*time.Second)

	env, err := c.GetTrendingFeed(context.Background(), 60.39, 5.32)
	if err != nil {
		t.Fatalf("GetTrendingFeed: %v", err)
	}
	if env.Status != StatusSuccess {
		t.Errorf("status = %q", env.Status)
	}
	if len(env.Items) != 1 || int(env.Items[0].Upvotes) != 12 {
		t.Errorf("items = %+v", env.Items)
	}
}

func TestResolveLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "city": "Bergen", "country": "Norway"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	city, country, err := c.ResolveLocation(context.Background(), 60.39, 5.32)
	if err != nil {
		t.Fatalf("ResolveLocation: %v", err)
	}
	if city != "Bergen" || country != "Norway" {
		t.Errorf("got %q, %q", city, country)
	}
}

func TestCreatePostSendsIdempotencyKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_, _ = w.Write([]byte(`{"status": "success", "record": {"id": "p1", "content": "hi"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	record, err := c.CreatePost(context.Background(), CreatePostRequest{
		Content: "hi", Latitude: 1, Longitude: 2,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if record.ID != "p1" {
		t.Errorf("record id = %q", record.ID)
	}
	if gotKey == "" {
		t.Error("Idempotency-Key header missing")
	}
}

func TestNonSuccessEnvelopeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	if _, err := c.GetProfile(context.Background()); err == nil {
		t.Fatal("non-success profile status should be an error")
	}
	if err := c.UpdateSetting(context.Background(), "dark_mode", true); err == nil {
		t.Fatal("non-success update status should be an error")
	}
}
