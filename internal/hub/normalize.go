package hub

import (
	"context"
	"strings"

	"github.com/arnfell/driftline/internal/gateway"
	"github.com/arnfell/driftline/internal/geocode"
	"github.com/arnfell/driftline/internal/models"
)

// normalizeSettings turns the gateway's name/value pairs into the
// boolean settings record. Unrecognized names are ignored; names absent
// from the payload stay nil so consumers can apply their own defaults.
func normalizeSettings(pairs []gateway.SettingPair) models.Settings {
	var s models.Settings
	for _, pair := range pairs {
		field := settingField(&s, pair.Name)
		if field == nil {
			continue
		}
		v := truthy(pair.Value)
		*field = &v
	}
	return s
}

// settingField maps a wire preference name to its record field, or nil
// for an unrecognized name.
func settingField(s *models.Settings, name string) **bool {
	switch name {
	case "push_notifications":
		return &s.PushNotifications
	case "email_notifications":
		return &s.EmailNotifications
	case "profile_visible":
		return &s.ProfileVisible
	case "search_visible":
		return &s.SearchVisible
	case "dark_mode":
		return &s.DarkMode
	default:
		return nil
	}
}

// truthy interprets the gateway's loose boolean encoding: 1 and "1" are
// true, anything else is false.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "1" || strings.EqualFold(t, "true")
	case float64:
		return t == 1
	case int:
		return t == 1
	default:
		return false
	}
}

// formatFeedItem builds the display-ready projection of one raw feed
// record. Items with the unknown-place sentinel and usable coordinates
// get one resolver call; a resolver miss leaves the sentinel in place.
func (h *Hub) formatFeedItem(ctx context.Context, raw gateway.RawFeedItem) models.FeedItem {
	place := raw.Location
	if place == geocode.UnknownPlace && raw.Latitude != nil && raw.Longitude != nil && h.resolver != nil {
		resolved := h.resolver.ResolvePlaceName(ctx, *raw.Latitude, *raw.Longitude)
		if resolved != geocode.UnknownPlace && resolved != geocode.UnknownLocation {
			place = resolved
		}
	}

	manage := models.ManagePermissions{
		CanDelete:  false,
		CanReport:  true,
		CanSave:    true,
		Bookmarked: false,
		VoteState:  models.VoteNone,
	}
	if raw.Manage != nil {
		manage = models.ManagePermissions{
			CanDelete:  raw.Manage.CanDelete,
			CanReport:  raw.Manage.CanReport,
			CanSave:    raw.Manage.CanSave,
			Bookmarked: raw.Manage.Bookmarked,
			VoteState:  voteState(raw.Manage.VoteState),
		}
	}

	return models.FeedItem{
		ID:        raw.ID,
		Content:   raw.Content,
		Author:    raw.Author,
		TimeAgo:   raw.TimeAgo,
		Upvotes:   int(raw.Upvotes),
		Downvotes: int(raw.Downvotes),
		Comments:  int(raw.Comments),
		Distance:  place,
		Score:     raw.Score,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		AvatarURL: h.absoluteMediaURL(raw.Avatar),
		HasMedia:  raw.HasMedia || len(raw.Media) > 0,
		Media:     raw.Media,
		Manage:    manage,
	}
}

// absoluteMediaURL rewrites a relative avatar reference against the
// media base URL. Absolute references pass through untouched.
func (h *Hub) absoluteMediaURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimSuffix(h.mediaBase, "/") + "/" + strings.TrimPrefix(ref, "/")
}

func voteState(s string) models.VoteState {
	switch s {
	case "up":
		return models.VoteUp
	case "down":
		return models.VoteDown
	default:
		return models.VoteNone
	}
}
