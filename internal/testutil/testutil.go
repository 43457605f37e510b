// Package testutil provides shared test helpers: a scriptable fake
// gateway and a temporary handoff store.
package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/arnfell/driftline/internal/gateway"
	"github.com/arnfell/driftline/internal/handoff"
	"github.com/arnfell/driftline/internal/models"
)

// FakeGateway implements gateway.Client with per-operation functions.
// Unset functions fail the call, which exercises the fail-soft paths.
// Calls counts invocations per operation for dedup/exactly-once tests.
type FakeGateway struct {
	ProfileFn       func(ctx context.Context) (*models.Profile, error)
	SettingsFn      func(ctx context.Context) ([]gateway.SettingPair, error)
	SavedFn         func(ctx context.Context) (*gateway.SavedItemsEnvelope, error)
	FeedFn          func(ctx context.Context, lat, lon float64) (*gateway.FeedEnvelope, error)
	TagsFn          func(ctx context.Context) (*gateway.TagsEnvelope, error)
	UpdateSettingFn func(ctx context.Context, name string, value bool) error
	CreatePostFn    func(ctx context.Context, req gateway.CreatePostRequest) (*gateway.RawFeedItem, error)
	ResolveFn       func(ctx context.Context, lat, lon float64) (string, string, error)

	mu    sync.Mutex
	calls map[string]int
}

var _ gateway.Client = (*FakeGateway)(nil)

func (f *FakeGateway) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

// Calls returns how many times the named operation was invoked.
func (f *FakeGateway) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeGateway) GetProfile(ctx context.Context) (*models.Profile, error) {
	f.record("profile")
	if f.ProfileFn == nil {
		return nil, errUnscripted
	}
	return f.ProfileFn(ctx)
}

func (f *FakeGateway) GetSettings(ctx context.Context) ([]gateway.SettingPair, error) {
	f.record("settings")
	if f.SettingsFn == nil {
		return nil, errUnscripted
	}
	return f.SettingsFn(ctx)
}

func (f *FakeGateway) GetSavedItems(ctx context.Context) (*gateway.SavedItemsEnvelope, error) {
	f.record("saved")
	if f.SavedFn == nil {
		return nil, errUnscripted
	}
	return f.SavedFn(ctx)
}

func (f *FakeGateway) GetTrendingFeed(ctx context.Context, lat, lon float64) (*gateway.FeedEnvelope, error) {
	f.record("feed")
	if f.FeedFn == nil {
		return nil, errUnscripted
	}
	return f.FeedFn(ctx, lat, lon)
}

func (f *FakeGateway) GetPopularTags(ctx context.Context) (*gateway.TagsEnvelope, error) {
	f.record("tags")
	if f.TagsFn == nil {
		return nil, errUnscripted
	}
	return f.TagsFn(ctx)
}

func (f *FakeGateway) UpdateSetting(ctx context.Context, name string, value bool) error {
	f.record("update_setting")
	if f.UpdateSettingFn == nil {
		return errUnscripted
	}
	return f.UpdateSettingFn(ctx, name, value)
}

func (f *FakeGateway) CreatePost(ctx context.Context, req gateway.CreatePostRequest) (*gateway.RawFeedItem, error) {
	f.record("create_post")
	if f.CreatePostFn == nil {
		return nil, errUnscripted
	}
	return f.CreatePostFn(ctx, req)
}

func (f *FakeGateway) ResolveLocation(ctx context.Context, lat, lon float64) (string, string, error) {
	f.record("resolve")
	if f.ResolveFn == nil {
		return "", "", errUnscripted
	}
	return f.ResolveFn(ctx, lat, lon)
}

var errUnscripted = errors.New("testutil: operation not scripted")

// TestHandoff creates a temporary handoff store that is automatically
// cleaned up.
func TestHandoff(t *testing.T) *handoff.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "driftline-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := handoff.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
