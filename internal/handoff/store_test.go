package handoff

import (
	"errors"
	"os"
	"testing"

	"github.com/arnfell/driftline/internal/apperr"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "driftline-handoff-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	store, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutTakeOnce(t *testing.T) {
	store := testStore(t)

	if err := store.Put(SlotLatestPost, []byte(`{"id":"p1"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	payload, err := store.Take(SlotLatestPost)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if string(payload) != `{"id":"p1"}` {
		t.Errorf("payload = %s", payload)
	}

	// The slot is consumed: a second take finds nothing.
	if _, err := store.Take(SlotLatestPost); !errors.Is(err, apperr.ErrNoHandoff) {
		t.Errorf("second take err = %v, want ErrNoHandoff", err)
	}
}

func TestTakeEmptySlot(t *testing.T) {
	store := testStore(t)
	if _, err := store.Take(SlotLatestPost); !errors.Is(err, apperr.ErrNoHandoff) {
		t.Errorf("err = %v, want ErrNoHandoff", err)
	}
}

func TestPutReplacesUnreadValue(t *testing.T) {
	store := testStore(t)

	if err := store.Put(SlotLatestPost, []byte(`first`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(SlotLatestPost, []byte(`second`)); err != nil {
		t.Fatal(err)
	}

	payload, err := store.Take(SlotLatestPost)
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != "second" {
		t.Errorf("payload = %s, want second", payload)
	}
}
