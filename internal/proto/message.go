package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeFindMatch   = "findMatch"
	InboundTypeSignal      = "signal"
	InboundTypeSendMessage = "sendMessage"
	InboundTypeLeaveRoom   = "leaveRoom"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// FindMatchData requests pairing, optionally restricted to a topic.
type FindMatchData struct {
	Topic string `json:"topic,omitempty"`
}

// SignalData carries an opaque signaling payload for the room peer.
type SignalData struct {
	Room string          `json:"roomId"`
	Data json.RawMessage `json:"data"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Room string `json:"roomId"`
	Text string `json:"text"`
}

// LeaveRoomData ends the session in a room.
type LeaveRoomData struct {
	Room string `json:"roomId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMatchFound notifies both members that a room was created.
type EventMatchFound struct {
	Room  string   `json:"roomId"`
	Users []string `json:"users"`
	Topic string   `json:"topic,omitempty"`
}

// EventMatchTimeout notifies a waiting client that no match was found.
type EventMatchTimeout struct {
	Message string `json:"message"`
}

// EventSignal delivers a signaling payload from the room peer.
type EventSignal struct {
	Sender string          `json:"sender"`
	Data   json.RawMessage `json:"data"`
}

// EventChatMessage delivers a chat message to both room members.
type EventChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
