package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/arnfell/driftline/internal/models"
)

// HTTPClient implements Client against a configured gateway base URL.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// Verify *HTTPClient satisfies Client at compile time.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a gateway client. Timeouts belong to the
// transport layer, so the HTTP client timeout is the only one applied.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s response: %w", path, err)
	}
	return nil
}

// GetProfile fetches the authenticated user's profile record.
func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	var env struct {
		Status  string         `json:"status"`
		Profile models.Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/profile", nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Status != StatusSuccess {
		return nil, fmt.Errorf("gateway: profile status %q", env.Status)
	}
	return &env.Profile, nil
}

// GetSettings fetches the raw name/value preference pairs.
func (c *HTTPClient) GetSettings(ctx context.Context) ([]SettingPair, error) {
	var env struct {
		Status   string        `json:"status"`
		Settings []SettingPair `json:"settings"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/settings", nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Status != StatusSuccess {
		return nil, fmt.Errorf("gateway: settings status %q", env.Status)
	}
	return env.Settings, nil
}

// GetSavedItems fetches the saved-posts list.
func (c *HTTPClient) GetSavedItems(ctx context.Context) (*SavedItemsEnvelope, error) {
	var env SavedItemsEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/saved", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// GetTrendingFeed fetches the trending feed around the given point.
func (c *HTTPClient) GetTrendingFeed(ctx context.Context, lat, lon float64) (*FeedEnvelope, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	var env FeedEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/feed/trending", q, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// GetPopularTags fetches the popularity-ranked tag list.
func (c *HTTPClient) GetPopularTags(ctx context.Context) (*TagsEnvelope, error) {
	var env TagsEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/tags/popular", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// UpdateSetting writes one preference to the gateway.
func (c *HTTPClient) UpdateSetting(ctx context.Context, name string, value bool) error {
	body := map[string]any{"name": name, "value": value}
	var env struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPut, "/v1/settings", nil, body, &env); err != nil {
		return err
	}
	if env.Status != StatusSuccess {
		return fmt.Errorf("gateway: update setting status %q", env.Status)
	}
	return nil
}

// CreatePost creates a post. The request carries an idempotency key so a
// retried POST after a dropped response cannot double-create.
func (c *HTTPClient) CreatePost(ctx context.Context, req CreatePostRequest) (*RawFeedItem, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: encode post: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/posts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gateway: build post request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: create post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway: create post: status %d", resp.StatusCode)
	}

	var env struct {
		Status string      `json:"status"`
		Record RawFeedItem `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("gateway: decode post response: %w", err)
	}
	if env.Status != StatusSuccess {
		return nil, fmt.Errorf("gateway: create post status %q", env.Status)
	}
	return &env.Record, nil
}

// ResolveLocation queries the gateway's coordinate-to-place endpoint.
// This is the primary stage of the geocoding cascade.
func (c *HTTPClient) ResolveLocation(ctx context.Context, lat, lon float64) (string, string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	var env struct {
		Status  string `json:"status"`
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/location/resolve", q, nil, &env); err != nil {
		return "", "", err
	}
	if env.Status != StatusSuccess {
		return "", "", fmt.Errorf("gateway: resolve location status %q", env.Status)
	}
	return env.City, env.Country, nil
}
