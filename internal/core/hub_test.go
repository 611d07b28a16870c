package core

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHubTopicMatchAndRelay(t *testing.T) {
	hub := newTestHub(t, time.Hour, time.Hour)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}
	bob.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}

	matchA := mustEvent(t, alice.Events, EventMatchFound)
	matchB := mustEvent(t, bob.Events, EventMatchFound)
	if matchA.Room != matchB.Room {
		t.Fatalf("members disagree on room id: %q vs %q", matchA.Room, matchB.Room)
	}
	if matchA.Topic != "films" || len(matchA.Users) != 2 {
		t.Fatalf("unexpected match event: %+v", matchA)
	}

	// Chat is echoed to both members, sender included.
	alice.Commands <- &Command{Kind: CommandSendMessage, Room: matchA.Room, Text: "hi"}
	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventChatMessage)
		if ev.Sender != "a" || ev.Text != "hi" {
			t.Fatalf("unexpected chat event for %s: %+v", c.ID, ev)
		}
	}

	// Signaling goes to the other member only.
	bob.Commands <- &Command{Kind: CommandSignal, Room: matchA.Room, Data: json.RawMessage(`{"sdp":"offer"}`)}
	sig := mustEvent(t, alice.Events, EventSignal)
	if sig.Sender != "b" {
		t.Fatalf("unexpected signal sender: %q", sig.Sender)
	}
	noEvent(t, bob.Events)
}

func TestHubDuplicateFindMatchRejected(t *testing.T) {
	hub := newTestHub(t, time.Hour, time.Hour)

	alice := NewClient("a", "alice")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}
	alice.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeAlreadyQueued {
		t.Fatalf("expected already_queued error, got %+v", ev)
	}
	if stats := hub.Stats(); stats.Waiting != 1 {
		t.Fatalf("rejection must keep exactly one waiting entry, have %d", stats.Waiting)
	}
}

func TestHubFindMatchWhileInRoomRejected(t *testing.T) {
	hub := newTestHub(t, time.Hour, time.Hour)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandFindMatch}
	bob.Commands <- &Command{Kind: CommandFindMatch}
	mustEvent(t, alice.Events, EventMatchFound)
	mustEvent(t, bob.Events, EventMatchFound)

	alice.Commands <- &Command{Kind: CommandFindMatch}
	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request error, got %+v", ev)
	}
}

func TestHubFallbackPairsTopicWithUntyped(t *testing.T) {
	hub := newTestHub(t, 100*time.Millisecond, 5*time.Second)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}
	bob.Commands <- &Command{Kind: CommandFindMatch}

	// Until the fallback deadline, topic-restricted alice is not
	// matchable by untyped bob; afterwards they pair and the room keeps
	// alice's topic.
	matchA := mustEvent(t, alice.Events, EventMatchFound)
	matchB := mustEvent(t, bob.Events, EventMatchFound)
	if matchA.Room != matchB.Room || matchA.Topic != "films" {
		t.Fatalf("unexpected fallback match: %+v vs %+v", matchA, matchB)
	}
	if stats := hub.Stats(); stats.Waiting != 0 || stats.Rooms != 1 {
		t.Fatalf("unexpected stats after fallback match: %+v", stats)
	}
}

func TestHubWaitTimeoutNotifiesOnce(t *testing.T) {
	hub := newTestHub(t, 50*time.Millisecond, 200*time.Millisecond)

	alice := NewClient("a", "alice")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}

	ev := mustEvent(t, alice.Events, EventMatchTimeout)
	if ev.Message == "" {
		t.Fatalf("timeout notification should carry a message")
	}
	if stats := hub.Stats(); stats.Waiting != 0 {
		t.Fatalf("entry should be removed at the wait deadline")
	}
	noEvent(t, alice.Events)

	// The connection may search again after the timeout.
	alice.Commands <- &Command{Kind: CommandFindMatch}
	bob := NewClient("b", "bob")
	hub.RegisterClient(bob)
	bob.Commands <- &Command{Kind: CommandFindMatch}
	mustEvent(t, alice.Events, EventMatchFound)
}

func TestHubLeaveRoomEndsCallForBoth(t *testing.T) {
	hub := newTestHub(t, time.Hour, time.Hour)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandFindMatch}
	bob.Commands <- &Command{Kind: CommandFindMatch}
	match := mustEvent(t, alice.Events, EventMatchFound)
	mustEvent(t, bob.Events, EventMatchFound)

	alice.Commands <- &Command{Kind: CommandLeaveRoom, Room: match.Room}
	mustEvent(t, alice.Events, EventCallEnded)
	mustEvent(t, bob.Events, EventCallEnded)

	if stats := hub.Stats(); stats.Rooms != 0 {
		t.Fatalf("room should be gone after leave")
	}

	// Leaving again is a harmless no-op.
	bob.Commands <- &Command{Kind: CommandLeaveRoom, Room: match.Room}
	if stats := hub.Stats(); stats.Rooms != 0 {
		t.Fatalf("unexpected rooms after duplicate leave")
	}
	noEvent(t, alice.Events)
	noEvent(t, bob.Events)
}

func TestHubDisconnectCancelsQueueAndRoom(t *testing.T) {
	hub := newTestHub(t, time.Hour, time.Hour)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandFindMatch}
	bob.Commands <- &Command{Kind: CommandFindMatch}
	match := mustEvent(t, alice.Events, EventMatchFound)
	mustEvent(t, bob.Events, EventMatchFound)

	hub.UnregisterClient(alice)

	mustEvent(t, bob.Events, EventCallEnded)
	if stats := hub.Stats(); stats.Rooms != 0 || stats.Clients != 1 {
		t.Fatalf("unexpected stats after disconnect: %+v", stats)
	}

	// A late signal referencing the dead room is silently dropped.
	bob.Commands <- &Command{Kind: CommandSignal, Room: match.Room, Data: json.RawMessage(`{}`)}
	if stats := hub.Stats(); stats.Rooms != 0 {
		t.Fatalf("late signal must not resurrect the room")
	}
	noEvent(t, bob.Events)
}

// syncBuffer lets the test read log output written from the hub goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHubLogsGuestName(t *testing.T) {
	out := &syncBuffer{}
	logger := zerolog.New(out).Level(zerolog.DebugLevel)
	hub := NewHub(time.Hour, time.Hour, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	alice := NewClient("a", "guest-d3adb33f")
	hub.RegisterClient(alice)
	waitStats(t, hub, func(s Stats) bool { return s.Clients == 1 })

	if !strings.Contains(out.String(), "guest-d3adb33f") {
		t.Fatalf("connect log should carry the guest name, got: %s", out.String())
	}
}

func TestHubDisconnectWhileWaitingCancelsEntry(t *testing.T) {
	hub := newTestHub(t, time.Hour, time.Hour)

	alice := NewClient("a", "alice")
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}

	hub.UnregisterClient(alice)
	waitStats(t, hub, func(s Stats) bool { return s.Clients == 0 && s.Waiting == 0 })

	// The entry was cancelled; a later same-topic request finds nobody.
	bob := NewClient("b", "bob")
	hub.RegisterClient(bob)
	bob.Commands <- &Command{Kind: CommandFindMatch, Topic: "films"}

	waitStats(t, hub, func(s Stats) bool { return s.Waiting == 1 && s.Rooms == 0 })
	noEvent(t, bob.Events)
}
