package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/arnfell/driftline/internal/apperr"
	"github.com/arnfell/driftline/internal/gateway"
	"github.com/arnfell/driftline/internal/geocode"
	"github.com/arnfell/driftline/internal/handoff"
	"github.com/arnfell/driftline/internal/hub"
	"github.com/arnfell/driftline/internal/lifecycle"
	"github.com/arnfell/driftline/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	hub         *hub.Hub
	gw          gateway.Client
	coordinator *lifecycle.Coordinator
	handoff     *handoff.Store
}

// NewHandler creates a new Handler.
func NewHandler(h *hub.Hub, gw gateway.Client, coordinator *lifecycle.Coordinator, store *handoff.Store) *Handler {
	return &Handler{hub: h, gw: gw, coordinator: coordinator, handoff: store}
}

// GetState handles GET /state/{domain}: a snapshot of the domain's
// cached value and loading flag.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	switch hub.Domain(chi.URLParam(r, "domain")) {
	case hub.DomainProfile:
		profile, loading := h.hub.Profile()
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "is_loading": loading})
	case hub.DomainSettings:
		settings, loading := h.hub.Settings()
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings, "is_loading": loading})
	case hub.DomainSaved:
		items, count, loading := h.hub.SavedItems()
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": count, "is_loading": loading})
	case hub.DomainFeed:
		items, loading := h.hub.TrendingFeed()
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "is_loading": loading})
	case hub.DomainTags:
		tags, loading := h.hub.Tags()
		writeJSON(w, http.StatusOK, map[string]any{"tags": tags, "is_loading": loading})
	default:
		writeJSON(w, http.StatusNotFound, errorBody("unknown domain"))
	}
}

// Refresh handles POST /refresh/{domain}. The refresh runs to
// completion (fail-soft: a fetch failure leaves the domain empty, never
// an error status) and the fresh snapshot is returned.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch hub.Domain(chi.URLParam(r, "domain")) {
	case hub.DomainProfile:
		h.hub.RefreshProfile(ctx)
	case hub.DomainSettings:
		h.hub.RefreshSettings(ctx)
	case hub.DomainSaved:
		h.hub.RefreshSavedItems(ctx)
	case hub.DomainFeed:
		lat, lon, err := coordinateParams(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid coordinates"))
			return
		}
		h.hub.RefreshTrendingFeed(ctx, lat, lon)
	case hub.DomainTags:
		h.hub.RefreshTags(ctx)
	default:
		writeJSON(w, http.StatusNotFound, errorBody("unknown domain"))
		return
	}
	h.GetState(w, r)
}

// coordinateParams parses lat/lon query params for the feed refresh.
func coordinateParams(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return 0, 0, apperr.ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return 0, 0, apperr.ErrInvalidCoordinates
	}
	if !geocode.ValidCoordinates(lat, lon) {
		return 0, 0, apperr.ErrInvalidCoordinates
	}
	return lat, lon, nil
}

// UpdateSetting handles PUT /settings/{name}: optimistic local overlay
// first, then the remote write. The hub performs no rollback itself, so
// this handler reverts the overlay when the remote write fails.
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid body"))
		return
	}

	prev, known := h.hub.UpdateLocalSetting(name, req.Value)
	if !known {
		writeJSON(w, http.StatusNotFound, errorBody("unknown setting"))
		return
	}

	if err := h.gw.UpdateSetting(r.Context(), name, req.Value); err != nil {
		slog.Warn("setting write failed, reverting overlay",
			slog.String("name", name), slog.String("error", err.Error()))
		h.hub.RestoreLocalSetting(name, prev)
		writeJSON(w, http.StatusBadGateway, errorBody("setting update failed"))
		return
	}

	settings, loading := h.hub.Settings()
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings, "is_loading": loading})
}

// CreatePost handles POST /posts. Validation failures surface before
// any network call; the created record is parked in the handoff slot
// for the presentation layer to pick up once.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !geocode.ValidCoordinates(req.Latitude, req.Longitude) {
		writeJSON(w, http.StatusBadRequest, errorBody(apperr.ErrInvalidCoordinates.Error()))
		return
	}

	record, err := h.gw.CreatePost(r.Context(), gateway.CreatePostRequest{
		Content:   req.Content,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Media:     req.Media,
	})
	if err != nil {
		slog.Error("create post failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("create post failed"))
		return
	}

	payload, err := json.Marshal(record)
	if err == nil {
		if putErr := h.handoff.Put(handoff.SlotLatestPost, payload); putErr != nil {
			slog.Warn("handoff put failed", slog.String("error", putErr.Error()))
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"record": record})
}

// TakeHandoff handles GET /handoff/latest-post: read-once retrieval of
// the just-created feed item.
func (h *Handler) TakeHandoff(w http.ResponseWriter, r *http.Request) {
	payload, err := h.handoff.Take(handoff.SlotLatestPost)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("no handoff value"))
		return
	}
	var record gateway.RawFeedItem
	if err := json.Unmarshal(payload, &record); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("corrupt handoff value"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": record})
}

// PutSession handles PUT /session: the embedding app reports the
// current auth state and the lifecycle coordinator reacts to it.
func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid body"))
		return
	}
	h.coordinator.Observe(models.AuthState{
		IsAuthenticated: req.IsAuthenticated,
		Identity:        req.Identity,
	})
	w.WriteHeader(http.StatusNoContent)
}
