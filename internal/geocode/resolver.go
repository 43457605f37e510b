// Package geocode turns raw coordinates into human-readable place names
// by cascading over a primary gateway-hosted API and a public
// reverse-geocoding service. The cascade never returns an error: every
// stage failure degrades to the next stage or to a sentinel string.
package geocode

import (
	"context"
	"log/slog"
	"math"
	"strings"
)

// Sentinels marking an unresolved place. UnknownPlace is what the
// primary API (and raw feed records) use; UnknownLocation is the
// terminal default when the secondary lookup also yields nothing. The
// feed formatter branches on UnknownPlace specifically, so the two
// literals must not be merged.
const (
	UnknownPlace    = "Unknown"
	UnknownLocation = "Unknown Location"
)

// PrimaryProvider is the gateway-hosted coordinate-to-place API.
type PrimaryProvider interface {
	ResolveLocation(ctx context.Context, lat, lon float64) (city, country string, err error)
}

// SecondaryProvider is the public reverse-geocoding fallback.
type SecondaryProvider interface {
	Reverse(ctx context.Context, lat, lon float64) (*ReverseResult, error)
}

// Resolver implements the two-stage resolution cascade. Each call
// re-resolves; resolved coordinates are not cached across calls.
type Resolver struct {
	primary   PrimaryProvider
	secondary SecondaryProvider
	logger    *slog.Logger
}

// NewResolver creates a resolver over the two providers.
func NewResolver(primary PrimaryProvider, secondary SecondaryProvider, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{primary: primary, secondary: secondary, logger: logger}
}

// ResolvePlaceName resolves coordinates to a place name. The result is
// never empty: if both stages fail it is one of the sentinels.
func (r *Resolver) ResolvePlaceName(ctx context.Context, lat, lon float64) string {
	city, _, err := r.primary.ResolveLocation(ctx, lat, lon)
	if err == nil && city != "" && city != UnknownPlace {
		return city
	}
	if err != nil {
		r.logger.Debug("geocode: primary resolve failed", slog.String("error", err.Error()))
	}

	name, _ := r.resolveSecondary(ctx, lat, lon)
	if name != "" {
		return name
	}
	return UnknownLocation
}

// ResolveCityAndCountry follows the same cascade but returns the pair.
// Country is populated only when the winning source supplied it.
func (r *Resolver) ResolveCityAndCountry(ctx context.Context, lat, lon float64) (string, string) {
	city, country, err := r.primary.ResolveLocation(ctx, lat, lon)
	if err == nil && city != "" && city != UnknownPlace {
		return city, country
	}
	if err != nil {
		r.logger.Debug("geocode: primary resolve failed", slog.String("error", err.Error()))
	}

	name, country := r.resolveSecondary(ctx, lat, lon)
	if name != "" {
		return name, country
	}
	return UnknownLocation, ""
}

// resolveSecondary runs the fallback stage. Malformed coordinates
// short-circuit before any network call is made.
func (r *Resolver) resolveSecondary(ctx context.Context, lat, lon float64) (name, country string) {
	if !ValidCoordinates(lat, lon) {
		return "", ""
	}
	result, err := r.secondary.Reverse(ctx, lat, lon)
	if err != nil {
		r.logger.Debug("geocode: secondary resolve failed", slog.String("error", err.Error()))
		return "", ""
	}
	return bestName(result), result.Address.Country
}

// bestName picks the most specific usable place name from a reverse
// lookup, in a fixed priority order.
func bestName(result *ReverseResult) string {
	addr := result.Address
	for _, candidate := range []string{
		addr.City,
		addr.Town,
		addr.Village,
		addr.Hamlet,
		addr.Municipality,
		addr.County,
	} {
		if candidate != "" {
			return candidate
		}
	}
	if result.DisplayName != "" {
		first, _, _ := strings.Cut(result.DisplayName, ",")
		return strings.TrimSpace(first)
	}
	return ""
}

// ValidCoordinates reports whether lat/lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
