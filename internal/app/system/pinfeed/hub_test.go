package pinfeed_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/accessmaps/accessmap/internal/app/system/pinfeed"
	"github.com/accessmaps/accessmap/internal/domain/models"
	"go.uber.org/zap"
)

// fakeLister is an in-memory Lister whose contents tests can swap.
type fakeLister struct {
	mu   sync.Mutex
	pins []models.Pin
	err  error
}

func (f *fakeLister) List(ctx context.Context) ([]models.Pin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.pins, nil
}

func (f *fakeLister) set(pins []models.Pin, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins, f.err = pins, err
}

func somePins(n int) []models.Pin {
	out := make([]models.Pin, n)
	for i := range out {
		out[i] = models.Pin{
			Location:       models.Location{Lng: -122.0, Lat: 37.5},
			Description:    "pin",
			Classification: models.ClassificationIssue,
		}
	}
	return out
}

func recv(t *testing.T, ch <-chan []models.Pin) []models.Pin {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribe_ReceivesCurrentSnapshotImmediately(t *testing.T) {
	store := &fakeLister{}
	store.set(somePins(2), nil)
	hub := pinfeed.NewHub(store, zap.NewNop())

	if err := hub.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	ch, cancel := hub.Subscribe()
	defer cancel()

	if got := recv(t, ch); len(got) != 2 {
		t.Errorf("initial snapshot: got %d pins, want 2", len(got))
	}
}

func TestRefresh_PushesToSubscribers(t *testing.T) {
	store := &fakeLister{}
	hub := pinfeed.NewHub(store, zap.NewNop())

	ch, cancel := hub.Subscribe()
	defer cancel()
	recv(t, ch) // drain the initial empty snapshot

	store.set(somePins(3), nil)
	if err := hub.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := recv(t, ch); len(got) != 3 {
		t.Errorf("pushed snapshot: got %d pins, want 3", len(got))
	}
}

func TestRefresh_StoreErrorKeepsPreviousSnapshot(t *testing.T) {
	store := &fakeLister{}
	store.set(somePins(2), nil)
	hub := pinfeed.NewHub(store, zap.NewNop())

	if err := hub.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	store.set(nil, errors.New("store down"))
	if err := hub.Refresh(context.Background()); err == nil {
		t.Error("expected error from failed refresh")
	}

	if got := hub.Snapshot(); len(got) != 2 {
		t.Errorf("snapshot after failed refresh: got %d pins, want 2", len(got))
	}
}

func TestSubscribe_LatestWins(t *testing.T) {
	store := &fakeLister{}
	hub := pinfeed.NewHub(store, zap.NewNop())

	ch, cancel := hub.Subscribe()
	defer cancel()

	// Without draining ch, push two snapshots. The undelivered first
	// one must be replaced, not block the publisher.
	store.set(somePins(1), nil)
	_ = hub.Refresh(context.Background())
	store.set(somePins(5), nil)
	_ = hub.Refresh(context.Background())

	if got := recv(t, ch); len(got) != 5 {
		t.Errorf("got %d pins, want latest snapshot of 5", len(got))
	}
}

func TestCancel_Idempotent(t *testing.T) {
	hub := pinfeed.NewHub(&fakeLister{}, zap.NewNop())

	ch, cancel := hub.Subscribe()
	recv(t, ch)

	cancel()
	cancel() // second call must be a no-op

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	_ = hub.Refresh(context.Background())
}

func TestClose_TearsDownSubscribers(t *testing.T) {
	hub := pinfeed.NewHub(&fakeLister{}, zap.NewNop())

	ch1, cancel1 := hub.Subscribe()
	ch2, cancel2 := hub.Subscribe()
	defer cancel1()
	defer cancel2()
	recv(t, ch1)
	recv(t, ch2)

	hub.Close()
	hub.Close() // idempotent

	if _, ok := <-ch1; ok {
		t.Error("ch1 should be closed")
	}
	if _, ok := <-ch2; ok {
		t.Error("ch2 should be closed")
	}

	// Subscribing after close yields a closed channel, not a hang.
	ch3, cancel3 := hub.Subscribe()
	defer cancel3()
	if _, ok := <-ch3; ok {
		t.Error("post-close subscription should be closed")
	}
}

func TestRun_NotifyTriggersRefresh(t *testing.T) {
	store := &fakeLister{}
	hub := pinfeed.NewHub(store, zap.NewNop())

	ctx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go hub.Run(ctx, time.Hour) // ticker effectively disabled

	ch, cancel := hub.Subscribe()
	defer cancel()
	recv(t, ch)

	store.set(somePins(4), nil)
	hub.Notify()

	// Run's initial refresh may deliver one more empty snapshot first.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if len(got) == 4 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for notified snapshot")
		}
	}
}
