package core

import (
	"encoding/json"
	"testing"
)

func newTestRooms() (*RoomRegistry, *Registry) {
	presence := NewRegistry()
	return NewRoomRegistry(presence), presence
}

func pair(t *testing.T, rr *RoomRegistry, presence *Registry, topic string) (*Client, *Client, *Room) {
	t.Helper()

	a := NewClient("a", "")
	b := NewClient("b", "")
	presence.Add(a)
	presence.Add(b)
	room := rr.Create(a, b, topic)
	return a, b, room
}

func TestRoomIDSymmetric(t *testing.T) {
	if RoomID("a", "b") != RoomID("b", "a") {
		t.Fatalf("room id must be order-independent")
	}
	if RoomID("a", "b") == RoomID("a", "c") {
		t.Fatalf("distinct pairs must map to distinct room ids")
	}
}

func TestCreateRoomTracksMembership(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "films")

	if rr.Get(room.ID) != room {
		t.Fatalf("room not registered")
	}
	if rr.MemberRoom("a") != room.ID || rr.MemberRoom("b") != room.ID {
		t.Fatalf("member index not updated")
	}
	if _, ok := a.Rooms[room.ID]; !ok {
		t.Fatalf("a not joined to transport grouping")
	}
	if _, ok := b.Rooms[room.ID]; !ok {
		t.Fatalf("b not joined to transport grouping")
	}
	if room.Other("a") != b || room.Other("b") != a {
		t.Fatalf("unexpected room members")
	}
}

func TestRelaySignalReachesOtherMemberOnly(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "")

	payload := json.RawMessage(`{"sdp":"offer"}`)
	rr.RelaySignal(room.ID, "a", payload)

	ev := mustEvent(t, b.Events, EventSignal)
	if ev.Sender != "a" || string(ev.Data) != string(payload) {
		t.Fatalf("unexpected signal event: %+v", ev)
	}
	noEvent(t, a.Events)
}

func TestRelaySignalUnknownRoomOrSenderDropped(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "")

	rr.RelaySignal("room-x-y", "a", nil)

	stranger := NewClient("c", "")
	presence.Add(stranger)
	rr.RelaySignal(room.ID, "c", nil)

	noEvent(t, a.Events)
	noEvent(t, b.Events)
	noEvent(t, stranger.Events)
}

func TestRelayChatEchoesToBothMembers(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "")

	rr.RelayChat(room.ID, "a", "hi")

	for _, c := range []*Client{a, b} {
		ev := mustEvent(t, c.Events, EventChatMessage)
		if ev.Sender != "a" || ev.Text != "hi" {
			t.Fatalf("unexpected chat event for %s: %+v", c.ID, ev)
		}
	}
}

func TestLeaveNotifiesBothAndIsIdempotent(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "")

	rr.Leave(room.ID, "a")

	mustEvent(t, a.Events, EventCallEnded)
	mustEvent(t, b.Events, EventCallEnded)
	if rr.Len() != 0 || rr.MemberRoom("a") != "" || rr.MemberRoom("b") != "" {
		t.Fatalf("room not fully removed")
	}
	if _, ok := a.Rooms[room.ID]; ok {
		t.Fatalf("a still attached to transport grouping")
	}

	// Leaving an already-removed room produces no notification.
	rr.Leave(room.ID, "a")
	noEvent(t, a.Events)
	noEvent(t, b.Events)
}

func TestDisconnectNotifiesRemainingMember(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "")

	presence.Remove("a")
	rr.Disconnect("a")

	mustEvent(t, b.Events, EventCallEnded)
	noEvent(t, a.Events)
	if rr.Len() != 0 {
		t.Fatalf("room should be gone")
	}

	rr.Disconnect("a") // no-op

	// Late relay after teardown is silently dropped.
	rr.RelaySignal(room.ID, "b", nil)
	noEvent(t, b.Events)
}

func TestRelayToStaleMemberTearsRoomDown(t *testing.T) {
	rr, presence := newTestRooms()
	a, b, room := pair(t, rr, presence, "")

	// b vanished without a disconnect event.
	presence.Remove("b")
	rr.RelaySignal(room.ID, "a", json.RawMessage(`{}`))

	mustEvent(t, a.Events, EventCallEnded)
	noEvent(t, b.Events)
	if rr.Len() != 0 || rr.MemberRoom("a") != "" {
		t.Fatalf("stale room should have been destroyed")
	}
}
