package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ReverseAddress holds the address fields a reverse lookup may return.
// Which fields are populated depends on how rural the coordinates are.
type ReverseAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Hamlet       string `json:"hamlet"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	Country      string `json:"country"`
}

// ReverseResult is the decoded response of a reverse-geocoding lookup.
type ReverseResult struct {
	DisplayName string         `json:"display_name"`
	Address     ReverseAddress `json:"address"`
}

// NominatimClient queries a Nominatim-compatible public reverse-geocoding
// service. The service is rate limited and requires clients to identify
// themselves, so every request carries the configured User-Agent and is
// throttled through a local limiter. A circuit breaker shields the
// service (and our own latency) when it is down; a tripped breaker is an
// ordinary lookup failure to callers.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[*ReverseResult]
}

// NewNominatimClient creates a reverse-geocoding client. ratePerSec
// values at or below zero fall back to the 1 req/s the public service
// mandates.
func NewNominatimClient(baseURL, userAgent string, ratePerSec float64, timeout time.Duration) *NominatimClient {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker[*ReverseResult](gobreaker.Settings{
		Name:        "reverse-geocoder",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), 1),
		breaker:   breaker,
	}
}

// Reverse looks up the address at the given coordinates.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (*ReverseResult, error) {
	return c.breaker.Execute(func() (*ReverseResult, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("geocode: rate wait: %w", err)
		}
		return c.reverse(ctx, lat, lon)
	})
}

func (c *NominatimClient) reverse(ctx context.Context, lat, lon float64) (*ReverseResult, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: reverse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: reverse: status %d", resp.StatusCode)
	}

	var result ReverseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("geocode: decode reverse response: %w", err)
	}
	return &result, nil
}
