package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandFindMatch asks to be paired with another waiting client.
	CommandFindMatch CommandKind = iota
	// CommandSignal relays an opaque signaling payload to the room peer.
	CommandSignal
	// CommandSendMessage delivers a chat message to both room members.
	CommandSendMessage
	// CommandLeaveRoom ends the session and tears the room down.
	CommandLeaveRoom
)

// Command represents an action requested by a client.
type Command struct {
	Kind  CommandKind
	Topic string
	Room  string
	Text  string
	Data  json.RawMessage
}
