package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arnfell/driftline/internal/models"
)

type fakeActions struct {
	mu     sync.Mutex
	loads  int
	clears int
}

func (f *fakeActions) LoadEssential(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
}

func (f *fakeActions) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *fakeActions) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads, f.clears
}

// waitForCounts polls until the action counters match or the deadline hits.
func waitForCounts(t *testing.T, f *fakeActions, loads, clears int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l, c := f.counts(); l == loads && c == clears {
			return
		}
		time.Sleep(time.Millisecond)
	}
	l, c := f.counts()
	t.Fatalf("counts = (%d loads, %d clears), want (%d, %d)", l, c, loads, clears)
}

func authenticated(id string, anonymous bool) models.AuthState {
	return models.AuthState{
		IsAuthenticated: true,
		Identity:        &models.Identity{ID: id, IsAnonymous: anonymous},
	}
}

func TestSignInTriggersSingleLoad(t *testing.T) {
	actions := &fakeActions{}
	c := New(actions, nil)
	defer c.Close()

	c.Observe(authenticated("u1", false))
	waitForCounts(t, actions, 1, 0)
}

func TestSignOutTriggersSingleClear(t *testing.T) {
	actions := &fakeActions{}
	c := New(actions, nil)
	defer c.Close()

	c.Observe(authenticated("u1", false))
	waitForCounts(t, actions, 1, 0)

	c.Observe(models.AuthState{IsAuthenticated: false})
	waitForCounts(t, actions, 1, 1)
}

func TestAnonymousSessionTriggersNothing(t *testing.T) {
	actions := &fakeActions{}
	c := New(actions, nil)
	defer c.Close()

	c.Observe(authenticated("anon-1", true))

	// Follow with a real sign-in so there is a settled point to wait on.
	c.Observe(authenticated("u1", false))
	waitForCounts(t, actions, 1, 0)
}

func TestRedundantNotificationsSuppressed(t *testing.T) {
	actions := &fakeActions{}
	c := New(actions, nil)
	defer c.Close()

	state := authenticated("u1", false)
	c.Observe(state)
	c.Observe(state)
	c.Observe(state)
	waitForCounts(t, actions, 1, 0)

	// A genuinely new identity acts again.
	c.Observe(authenticated("u2", false))
	waitForCounts(t, actions, 2, 0)
}

func TestObserveAfterCloseIsDropped(t *testing.T) {
	actions := &fakeActions{}
	c := New(actions, nil)
	c.Close()

	c.Observe(authenticated("u1", false))

	time.Sleep(20 * time.Millisecond)
	if l, cl := actions.counts(); l != 0 || cl != 0 {
		t.Errorf("counts after close = (%d, %d), want (0, 0)", l, cl)
	}
}
