// Package hub owns the per-domain cache of remote data and its loading
// lifecycle. Every refresh is fail-soft: a fetch failure degrades the
// domain to its empty representation and is never surfaced to callers.
// State is observed through snapshots, not through call results.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/arnfell/driftline/internal/gateway"
	"github.com/arnfell/driftline/internal/models"
)

// Domain identifies one independently cached category of remote data.
type Domain string

const (
	DomainProfile  Domain = "profile"
	DomainSettings Domain = "settings"
	DomainSaved    Domain = "saved"
	DomainFeed     Domain = "feed"
	DomainTags     Domain = "tags"
)

// Domains lists every cache domain, in refresh-surface order.
var Domains = []Domain{DomainProfile, DomainSettings, DomainSaved, DomainFeed, DomainTags}

// PlaceResolver is the slice of the geocoding resolver the hub needs
// when formatting feed items.
type PlaceResolver interface {
	ResolvePlaceName(ctx context.Context, lat, lon float64) string
}

// Hub is the process-wide synchronization hub. It is the single owner
// of the cache: consumers read snapshots and trigger writes only through
// its operations.
type Hub struct {
	gw        gateway.Client
	resolver  PlaceResolver
	mediaBase string
	logger    *slog.Logger

	mu         sync.RWMutex
	profile    models.Profile
	settings   models.Settings
	saved      []models.SavedItem
	savedCount int
	feed       []models.FeedItem
	tags       []models.Tag
	loading    map[Domain]bool

	// flight joins concurrent refreshes of the same domain into one
	// gateway call instead of letting completion order pick a winner.
	flight singleflight.Group
}

// New creates a hub over the gateway and resolver. mediaBase is the
// absolute URL prefix for relative avatar references.
func New(gw gateway.Client, resolver PlaceResolver, mediaBase string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		gw:        gw,
		resolver:  resolver,
		mediaBase: mediaBase,
		logger:    logger,
		saved:     []models.SavedItem{},
		feed:      []models.FeedItem{},
		tags:      []models.Tag{},
		loading:   make(map[Domain]bool),
	}
}

func (h *Hub) setLoading(d Domain, v bool) {
	h.mu.Lock()
	h.loading[d] = v
	h.mu.Unlock()
}

// IsLoading reports whether a fetch for the domain is in flight.
func (h *Hub) IsLoading(d Domain) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading[d]
}

// RefreshProfile fetches and replaces the profile record.
func (h *Hub) RefreshProfile(ctx context.Context) {
	h.setLoading(DomainProfile, true)
	defer h.setLoading(DomainProfile, false)

	v, err, _ := h.flight.Do(string(DomainProfile), func() (any, error) {
		return h.gw.GetProfile(ctx)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Warn("hub: profile refresh failed", slog.String("error", err.Error()))
		h.profile = models.Profile{}
		return
	}
	h.profile = *(v.(*models.Profile))
}

// RefreshSettings fetches the raw preference pairs and normalizes them
// into the boolean settings record.
func (h *Hub) RefreshSettings(ctx context.Context) {
	h.setLoading(DomainSettings, true)
	defer h.setLoading(DomainSettings, false)

	v, err, _ := h.flight.Do(string(DomainSettings), func() (any, error) {
		return h.gw.GetSettings(ctx)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Warn("hub: settings refresh failed", slog.String("error", err.Error()))
		h.settings = models.Settings{}
		return
	}
	h.settings = normalizeSettings(v.([]gateway.SettingPair))
}

// RefreshSavedItems fetches the saved-items list. The derived count is
// always recomputed from the list length.
func (h *Hub) RefreshSavedItems(ctx context.Context) {
	h.setLoading(DomainSaved, true)
	defer h.setLoading(DomainSaved, false)

	v, err, _ := h.flight.Do(string(DomainSaved), func() (any, error) {
		return h.gw.GetSavedItems(ctx)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Warn("hub: saved items refresh failed", slog.String("error", err.Error()))
		h.saved = []models.SavedItem{}
		h.savedCount = 0
		return
	}
	env := v.(*gateway.SavedItemsEnvelope)
	if env.Status != gateway.StatusSuccess {
		h.saved = []models.SavedItem{}
		h.savedCount = 0
		return
	}
	items := env.Items
	if items == nil {
		items = []models.SavedItem{}
	}
	h.saved = items
	h.savedCount = len(items)
}

// RefreshTrendingFeed fetches the trending feed around the given point
// and formats each record into its display-ready projection.
func (h *Hub) RefreshTrendingFeed(ctx context.Context, lat, lon float64) {
	h.setLoading(DomainFeed, true)
	defer h.setLoading(DomainFeed, false)

	v, err, _ := h.flight.Do(string(DomainFeed), func() (any, error) {
		return h.gw.GetTrendingFeed(ctx, lat, lon)
	})
	if err != nil {
		h.logger.Warn("hub: feed refresh failed", slog.String("error", err.Error()))
		h.mu.Lock()
		h.feed = []models.FeedItem{}
		h.mu.Unlock()
		return
	}
	env := v.(*gateway.FeedEnvelope)
	if env.Status != gateway.StatusSuccess {
		h.mu.Lock()
		h.feed = []models.FeedItem{}
		h.mu.Unlock()
		return
	}

	// Formatting may call out to the resolver, so build the new slice
	// before taking the lock.
	items := make([]models.FeedItem, len(env.Items))
	for i, raw := range env.Items {
		items[i] = h.formatFeedItem(ctx, raw)
	}

	h.mu.Lock()
	h.feed = items
	h.mu.Unlock()
}

// RefreshTags fetches and replaces the popular-tag list.
func (h *Hub) RefreshTags(ctx context.Context) {
	h.setLoading(DomainTags, true)
	defer h.setLoading(DomainTags, false)

	v, err, _ := h.flight.Do(string(DomainTags), func() (any, error) {
		return h.gw.GetPopularTags(ctx)
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Warn("hub: tags refresh failed", slog.String("error", err.Error()))
		h.tags = []models.Tag{}
		return
	}
	env := v.(*gateway.TagsEnvelope)
	if env.Status != gateway.StatusSuccess || env.Tags == nil {
		h.tags = []models.Tag{}
		return
	}
	h.tags = env.Tags
}

// LoadEssential refreshes profile and settings concurrently and returns
// only once both have settled. Sub-refreshes are fail-soft and never
// error, so the join never short-circuits. Feed, tags and saved items
// are deliberately excluded; their consumers load them on demand.
func (h *Hub) LoadEssential(ctx context.Context) {
	g := new(errgroup.Group)
	g.Go(func() error {
		h.RefreshProfile(ctx)
		return nil
	})
	g.Go(func() error {
		h.RefreshSettings(ctx)
		return nil
	})
	_ = g.Wait()
}

// UpdateLocalSetting overlays one field into the cached settings record
// without contacting the gateway. It returns the previous value so the
// caller can revert if its remote write later fails; the hub itself
// performs no rollback. Unknown names are ignored (known=false).
func (h *Hub) UpdateLocalSetting(name string, value bool) (prev *bool, known bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	field := settingField(&h.settings, name)
	if field == nil {
		return nil, false
	}
	if *field != nil {
		old := **field
		prev = &old
	}
	v := value
	*field = &v
	return prev, true
}

// RestoreLocalSetting puts a field back to a value previously returned
// by UpdateLocalSetting. A nil prev clears the field to absent.
func (h *Hub) RestoreLocalSetting(name string, prev *bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	field := settingField(&h.settings, name)
	if field == nil {
		return
	}
	if prev == nil {
		*field = nil
		return
	}
	v := *prev
	*field = &v
}

// ClearAll resets every domain to its empty representation. Loading
// flags are left alone; callers do not clear mid-flight.
func (h *Hub) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.profile = models.Profile{}
	h.settings = models.Settings{}
	h.saved = []models.SavedItem{}
	h.savedCount = 0
	h.feed = []models.FeedItem{}
	h.tags = []models.Tag{}
}

// Profile returns a snapshot of the profile domain.
func (h *Hub) Profile() (models.Profile, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.profile, h.loading[DomainProfile]
}

// Settings returns a snapshot of the settings domain.
func (h *Hub) Settings() (models.Settings, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings, h.loading[DomainSettings]
}

// SavedItems returns a snapshot of the saved-items domain with its
// derived count.
func (h *Hub) SavedItems() ([]models.SavedItem, int, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	items := make([]models.SavedItem, len(h.saved))
	copy(items, h.saved)
	return items, h.savedCount, h.loading[DomainSaved]
}

// TrendingFeed returns a snapshot of the formatted feed.
func (h *Hub) TrendingFeed() ([]models.FeedItem, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	items := make([]models.FeedItem, len(h.feed))
	copy(items, h.feed)
	return items, h.loading[DomainFeed]
}

// Tags returns a snapshot of the popular-tag list.
func (h *Hub) Tags() ([]models.Tag, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	tags := make([]models.Tag, len(h.tags))
	copy(tags, h.tags)
	return tags, h.loading[DomainTags]
}
