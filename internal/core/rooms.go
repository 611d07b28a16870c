package core

import "encoding/json"

// RoomRegistry owns the active-room table and relays signaling and chat
// events between room members. Like the matchmaker it is owned by the
// hub goroutine; serialization is structural, not locked.
//
// Unknown rooms and non-member senders are silently ignored: late or
// duplicate relays racing a teardown are expected under normal
// operation and must not surface as errors.
type RoomRegistry struct {
	presence *Registry

	rooms    map[string]*Room
	byMember map[string]string // connection id -> room id
}

// NewRoomRegistry constructs an empty room registry backed by the given
// connection registry.
func NewRoomRegistry(presence *Registry) *RoomRegistry {
	return &RoomRegistry{
		presence: presence,
		rooms:    make(map[string]*Room),
		byMember: make(map[string]string),
	}
}

// Create registers a room pairing a and b. Both clients are also joined
// to the transport-level room grouping. The caller notifies the members.
func (rr *RoomRegistry) Create(a, b *Client, topic string) *Room {
	room := newRoom(a, b, topic)
	rr.rooms[room.ID] = room
	rr.byMember[a.ID] = room.ID
	rr.byMember[b.ID] = room.ID
	a.Rooms[room.ID] = struct{}{}
	b.Rooms[room.ID] = struct{}{}
	return room
}

// Get returns the room for id, or nil.
func (rr *RoomRegistry) Get(id string) *Room {
	return rr.rooms[id]
}

// MemberRoom returns the id of the room containing the connection, or
// the empty string. A connection belongs to at most one room.
func (rr *RoomRegistry) MemberRoom(connID string) string {
	return rr.byMember[connID]
}

// Len returns the number of active rooms.
func (rr *RoomRegistry) Len() int {
	return len(rr.rooms)
}

// RelaySignal forwards an opaque signaling payload to the other member
// of the room. Dropped silently if the room is gone or the sender is
// not a member.
func (rr *RoomRegistry) RelaySignal(roomID, senderID string, data json.RawMessage) {
	room, ok := rr.rooms[roomID]
	if !ok || room.Member(senderID) == nil {
		return
	}
	other := room.Other(senderID)
	if !rr.presence.IsLive(other.ID) {
		// Peer vanished without a disconnect event; drop the stale half.
		rr.destroy(room)
		return
	}
	rr.send(other, &Event{
		Kind:   EventSignal,
		Room:   roomID,
		Sender: senderID,
		Data:   data,
	})
}

// RelayChat broadcasts a chat message to both members, including the
// sender, which the client UI uses as delivery confirmation. Dropped
// silently if the room is gone or the sender is not a member.
func (rr *RoomRegistry) RelayChat(roomID, senderID, text string) {
	room, ok := rr.rooms[roomID]
	if !ok || room.Member(senderID) == nil {
		return
	}
	other := room.Other(senderID)
	if !rr.presence.IsLive(other.ID) {
		rr.destroy(room)
		return
	}
	ev := &Event{
		Kind:   EventChatMessage,
		Room:   roomID,
		Sender: senderID,
		Text:   text,
	}
	for _, member := range room.members {
		rr.send(member, ev)
	}
}

// Leave tears the room down, notifying both members, and always detaches
// the requester from the transport-level grouping even when the room was
// already gone. Idempotent.
func (rr *RoomRegistry) Leave(roomID, requesterID string) {
	if room, ok := rr.rooms[roomID]; ok {
		rr.destroy(room)
	}
	if c := rr.presence.Get(requesterID); c != nil {
		delete(c.Rooms, roomID)
	}
}

// Disconnect removes the (at most one) room containing the connection
// and notifies the remaining member. No-op if the connection was not in
// a room.
func (rr *RoomRegistry) Disconnect(connID string) {
	roomID, ok := rr.byMember[connID]
	if !ok {
		return
	}
	rr.destroy(rr.rooms[roomID])
}

// destroy notifies all still-live members and removes the room. Removal
// and notification happen in one step of the hub loop, so no event can
// observe a half-destroyed room.
func (rr *RoomRegistry) destroy(room *Room) {
	ev := &Event{Kind: EventCallEnded, Room: room.ID}
	for id, member := range room.members {
		rr.send(member, ev)
		delete(member.Rooms, room.ID)
		delete(rr.byMember, id)
	}
	delete(rr.rooms, room.ID)
}

// send delivers an event to a live client, dropping it if the client is
// gone or its event buffer is full.
func (rr *RoomRegistry) send(c *Client, ev *Event) {
	if c == nil || !rr.presence.IsLive(c.ID) {
		return
	}
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
