// Package models defines the domain types shared across the sync core.
package models

// Profile is the authenticated user's profile record. It is owned by the
// hub and replaced wholesale on each refresh, never field-patched.
type Profile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	Bio          string `json:"bio"`
	Gender       string `json:"gender"`
	Location     string `json:"location"`
	IsVerified   bool   `json:"is_verified"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	CommentCount int    `json:"comment_count"`
	VoteCount    int    `json:"vote_count"`
	PostCount    int    `json:"post_count"`
}

// Settings is the normalized boolean view of the gateway's name/value
// preference pairs. Pointers distinguish "absent from the payload" from
// an explicit false; consumers apply their own defaults for nil fields.
type Settings struct {
	PushNotifications  *bool `json:"push_notifications,omitempty"`
	EmailNotifications *bool `json:"email_notifications,omitempty"`
	ProfileVisible     *bool `json:"profile_visible,omitempty"`
	SearchVisible      *bool `json:"search_visible,omitempty"`
	DarkMode           *bool `json:"dark_mode,omitempty"`
}

// SavedItem is a lightweight summary of a bookmarked post.
type SavedItem struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	SavedAt   string `json:"saved_at"`
	PlaceName string `json:"place_name"`
}

// VoteState is the caller's current vote on a feed item.
type VoteState string

const (
	VoteUp   VoteState = "up"
	VoteDown VoteState = "down"
	VoteNone VoteState = "none"
)

// ManagePermissions describes what the current user may do with a feed item.
type ManagePermissions struct {
	CanDelete  bool      `json:"can_delete"`
	CanReport  bool      `json:"can_report"`
	CanSave    bool      `json:"can_save"`
	Bookmarked bool      `json:"bookmarked"`
	VoteState  VoteState `json:"vote_state"`
}

// MediaRef points at one media attachment of a post.
type MediaRef struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// FeedItem is the display-ready projection of a raw feed record. Distance
// carries a resolved place-name label, not a numeric distance; the field
// name is kept for compatibility with the consuming presentation layer.
type FeedItem struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Author    string            `json:"author"`
	TimeAgo   string            `json:"time_ago"`
	Upvotes   int               `json:"upvotes"`
	Downvotes int               `json:"downvotes"`
	Comments  int               `json:"comments"`
	Distance  string            `json:"distance"`
	Score     float64           `json:"score"`
	Latitude  *float64          `json:"latitude,omitempty"`
	Longitude *float64          `json:"longitude,omitempty"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	HasMedia  bool              `json:"has_media"`
	Media     []MediaRef        `json:"media,omitempty"`
	Manage    ManagePermissions `json:"manage"`
}

// Tag is one popularity-ranked tag record.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Identity is the authenticated principal reported by the embedding app.
type Identity struct {
	ID          string `json:"id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// AuthState is the authentication snapshot the lifecycle coordinator
// reacts to. It is consumed read-only; the core never mutates it.
type AuthState struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	Identity        *Identity `json:"identity,omitempty"`
}

// Equal reports whether two auth states describe the same session, used
// to suppress redundant lifecycle notifications.
func (a AuthState) Equal(b AuthState) bool {
	if a.IsAuthenticated != b.IsAuthenticated {
		return false
	}
	if (a.Identity == nil) != (b.Identity == nil) {
		return false
	}
	if a.Identity == nil {
		return true
	}
	return *a.Identity == *b.Identity
}
