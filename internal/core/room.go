package core

import "time"

// RoomID derives a deterministic room identifier from two connection
// ids. Swapping the inputs yields the same id, so either member can
// reference the room symmetrically.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "room-" + a + "-" + b
}

// Room is a live pairing of exactly two connections. It exists from the
// moment a match decision is made until either member leaves or
// disconnects.
type Room struct {
	ID        string
	Topic     string
	CreatedAt time.Time

	members map[string]*Client
}

func newRoom(a, b *Client, topic string) *Room {
	return &Room{
		ID:        RoomID(a.ID, b.ID),
		Topic:     topic,
		CreatedAt: time.Now(),
		members: map[string]*Client{
			a.ID: a,
			b.ID: b,
		},
	}
}

// Member returns the client for id if it belongs to the room, or nil.
func (r *Room) Member(id string) *Client {
	return r.members[id]
}

// Other returns the member that is not id, or nil if id is not a member.
func (r *Room) Other(id string) *Client {
	if _, ok := r.members[id]; !ok {
		return nil
	}
	for memberID, c := range r.members {
		if memberID != id {
			return c
		}
	}
	return nil
}

// MemberIDs returns both member ids.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}
