package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newTestHub starts a hub with the given matchmaking delays and stops
// it on test cleanup.
func newTestHub(t *testing.T, fallbackDelay, waitTimeout time.Duration) *Hub {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(fallbackDelay, waitTimeout, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// waitStats polls the hub until the snapshot satisfies ok.
func waitStats(t *testing.T, hub *Hub, ok func(Stats) bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ok(hub.Stats()) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub never reached expected state, stats: %+v", hub.Stats())
}

// noEvent asserts the channel holds no buffered events.
func noEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}
