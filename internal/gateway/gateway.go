// Package gateway implements the HTTP client for the remote data gateway.
// Payload shapes here are wire shapes; normalization into display-ready
// domain types is the hub's job.
package gateway

import (
	"context"
	"strconv"
	"strings"

	"github.com/arnfell/driftline/internal/models"
)

// StatusSuccess is the envelope status the gateway reports on success.
// Any other status is treated as a failed fetch by callers.
const StatusSuccess = "success"

// SettingPair is one raw preference entry. Value arrives as whatever the
// gateway encoded: a number, a numeric string, or a bool.
type SettingPair struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// SavedItemsEnvelope wraps the saved-items list response.
type SavedItemsEnvelope struct {
	Status string             `json:"status"`
	Items  []models.SavedItem `json:"items"`
}

// TagsEnvelope wraps the popular-tags response.
type TagsEnvelope struct {
	Status string       `json:"status"`
	Tags   []models.Tag `json:"tags"`
}

// FeedEnvelope wraps the trending-feed response. Location, when present,
// is the gateway's own label for the query point.
type FeedEnvelope struct {
	Status   string        `json:"status"`
	Items    []RawFeedItem `json:"items"`
	Location string        `json:"location,omitempty"`
}

// RawManage is the wire form of per-item management permissions. The
// gateway may omit it entirely.
type RawManage struct {
	CanDelete  bool   `json:"can_delete"`
	CanReport  bool   `json:"can_report"`
	CanSave    bool   `json:"can_save"`
	Bookmarked bool   `json:"bookmarked"`
	VoteState  string `json:"vote_state"`
}

// RawFeedItem is one unnormalized feed record as the gateway sends it.
// Count fields use FlexInt because older gateway versions emit them as
// strings.
type RawFeedItem struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Author    string            `json:"author"`
	TimeAgo   string            `json:"time_ago"`
	Upvotes   FlexInt           `json:"upvotes"`
	Downvotes FlexInt           `json:"downvotes"`
	Comments  FlexInt           `json:"comments"`
	Location  string            `json:"location"`
	Score     float64           `json:"score"`
	Latitude  *float64          `json:"latitude,omitempty"`
	Longitude *float64          `json:"longitude,omitempty"`
	Avatar    string            `json:"avatar,omitempty"`
	HasMedia  bool              `json:"has_media"`
	Media     []models.MediaRef `json:"media,omitempty"`
	Manage    *RawManage        `json:"manage,omitempty"`
}

// CreatePostRequest is the payload for post creation. Media entries
// reference already-uploaded attachments.
type CreatePostRequest struct {
	Content   string            `json:"content"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Media     []models.MediaRef `json:"media,omitempty"`
}

// Client is the remote data gateway surface the core depends on.
// Consumers should depend on this interface rather than the concrete
// *HTTPClient to facilitate testing with fakes.
type Client interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	GetSettings(ctx context.Context) ([]SettingPair, error)
	GetSavedItems(ctx context.Context) (*SavedItemsEnvelope, error)
	GetTrendingFeed(ctx context.Context, lat, lon float64) (*FeedEnvelope, error)
	GetPopularTags(ctx context.Context) (*TagsEnvelope, error)
	UpdateSetting(ctx context.Context, name string, value bool) error
	CreatePost(ctx context.Context, req CreatePostRequest) (*RawFeedItem, error)
	ResolveLocation(ctx context.Context, lat, lon float64) (city, country string, err error)
}

// FlexInt decodes from a JSON number, a numeric string, or garbage.
// A missing or non-numeric source value becomes 0, never an error: a
// single malformed count must not fail the whole feed decode.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}
