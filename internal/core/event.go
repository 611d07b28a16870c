package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMatchFound notifies both members that a room was created.
	EventMatchFound EventKind = iota
	// EventMatchTimeout notifies a waiting client that no match was found.
	EventMatchTimeout
	// EventSignal delivers a signaling payload from the room peer.
	EventSignal
	// EventChatMessage delivers a chat message, echoed to the sender too.
	EventChatMessage
	// EventCallEnded notifies members that their room was torn down.
	EventCallEnded
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	Users   []string // both member ids, for EventMatchFound
	Topic   string
	Sender  string
	Text    string
	Data    json.RawMessage // opaque signaling payload
	Message string          // human-readable text for EventMatchTimeout
	Error   *CoreError
}
