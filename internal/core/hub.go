package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Stats is a point-in-time snapshot of hub state.
type Stats struct {
	Clients int `json:"clients"`
	Waiting int `json:"waiting"`
	Rooms   int `json:"rooms"`
}

type envelopeKind int

const (
	envRegister envelopeKind = iota
	envUnregister
	envCommand
	envTimer
	envStats
)

// envelope is a unit of work for the hub loop. Every mutation of the
// waiting queue or room table enters through here, so no two mutating
// operations ever interleave.
type envelope struct {
	kind   envelopeKind
	client *Client
	cmd    *Command
	timer  TimerKind
	connID string
	reply  chan Stats
}

// Hub is the event gateway: it serializes client commands, connect and
// disconnect notifications, and timer callbacks into a single
// processing stream, routing them to the matchmaker and room registry.
type Hub struct {
	log *zerolog.Logger

	inbox chan envelope
	done  chan struct{}

	presence   *Registry
	matchmaker *Matchmaker
	rooms      *RoomRegistry
}

// NewHub constructs a hub with the given matchmaking timing policy.
func NewHub(fallbackDelay, waitTimeout time.Duration, logger *zerolog.Logger) *Hub {
	h := &Hub{
		log:   logger,
		inbox: make(chan envelope, 64),
		done:  make(chan struct{}),
	}
	h.presence = NewRegistry()
	h.rooms = NewRoomRegistry(h.presence)
	h.matchmaker = NewMatchmaker(fallbackDelay, waitTimeout, h.presence.IsLive, func(kind TimerKind, id string) {
		h.post(envelope{kind: envTimer, timer: kind, connID: id})
	})
	return h
}

// Run processes events until the context is cancelled. All outstanding
// matchmaking timers are stopped on exit so teardown is deterministic.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.matchmaker.Shutdown()
		close(h.done)
	}()

	for {
		select {
		case env := <-h.inbox:
			h.handle(env)
		case <-ctx.Done():
			return
		}
	}
}

// RegisterClient announces a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.post(envelope{kind: envRegister, client: c})
}

// UnregisterClient signals that the connection is gone. The transport
// is the sole writer of c.Commands; closing it here guarantees all
// commands it delivered are processed before the disconnect.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
}

// Stats returns a snapshot of hub state, or zero values if the hub has
// stopped.
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	h.post(envelope{kind: envStats, reply: reply})
	select {
	case s := <-reply:
		return s
	case <-h.done:
		return Stats{}
	}
}

func (h *Hub) post(env envelope) {
	select {
	case h.inbox <- env:
	case <-h.done:
	}
}

// pump forwards one client's commands into the shared inbox, preserving
// per-connection ordering, and posts the disconnect once the transport
// closes the command channel.
func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				h.post(envelope{kind: envUnregister, client: c})
				return
			}
			h.post(envelope{kind: envCommand, client: c, cmd: cmd})
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handle(env envelope) {
	switch env.kind {
	case envRegister:
		h.handleRegister(env.client)
	case envUnregister:
		h.handleDisconnect(env.client)
	case envCommand:
		h.handleCommand(env.client, env.cmd)
	case envTimer:
		h.handleTimer(env.timer, env.connID)
	case envStats:
		env.reply <- Stats{
			Clients: h.presence.Len(),
			Waiting: h.matchmaker.Len(),
			Rooms:   h.rooms.Len(),
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if h.presence.IsLive(c.ID) {
		h.log.Warn().Str("client_id", c.ID).Msg("duplicate register ignored")
		return
	}
	h.presence.Add(c)
	go h.pump(c)
	h.log.Debug().Str("client_id", c.ID).Str("name", c.Name).Msg("client connected")
}

func (h *Hub) handleDisconnect(c *Client) {
	if h.presence.Get(c.ID) != c {
		return
	}
	h.matchmaker.Cancel(c.ID)
	h.rooms.Disconnect(c.ID)
	h.presence.Remove(c.ID)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Msg("client disconnected")
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandFindMatch:
		h.handleFindMatch(c, cmd.Topic)
	case CommandSignal:
		h.rooms.RelaySignal(cmd.Room, c.ID, cmd.Data)
	case CommandSendMessage:
		h.rooms.RelayChat(cmd.Room, c.ID, cmd.Text)
		h.log.Debug().
			Str("room", cmd.Room).
			Str("client_id", c.ID).
			Str("name", c.Name).
			Str("text", truncate(cmd.Text, 20)).
			Msg("chat message")
	case CommandLeaveRoom:
		h.matchmaker.Cancel(c.ID)
		h.rooms.Leave(cmd.Room, c.ID)
		h.log.Debug().Str("room", cmd.Room).Str("client_id", c.ID).Msg("client left room")
	}
}

func (h *Hub) handleFindMatch(c *Client, topic string) {
	if h.rooms.MemberRoom(c.ID) != "" {
		h.sendEvent(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeBadRequest, "already in a room"),
		})
		return
	}

	partner, roomTopic, err := h.matchmaker.RequestMatch(c.ID, topic)
	if err != nil {
		h.sendEvent(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeAlreadyQueued, "match already requested"),
		})
		return
	}
	if partner == nil {
		h.log.Debug().Str("client_id", c.ID).Str("topic", topic).Msg("client queued")
		return
	}
	h.createRoom(c, partner.ID, roomTopic)
}

func (h *Hub) handleTimer(kind TimerKind, connID string) {
	switch kind {
	case TimerFallback:
		partner, roomTopic, matched := h.matchmaker.OnFallbackTimeout(connID)
		if !matched {
			return
		}
		c := h.presence.Get(connID)
		if c == nil {
			return
		}
		h.createRoom(c, partner.ID, roomTopic)
	case TimerWait:
		if !h.matchmaker.OnWaitTimeout(connID) {
			return
		}
		h.sendEvent(h.presence.Get(connID), &Event{
			Kind:    EventMatchTimeout,
			Message: "No match found. Try again.",
		})
		h.log.Debug().Str("client_id", connID).Msg("match wait timed out")
	}
}

func (h *Hub) createRoom(a *Client, partnerID, topic string) {
	b := h.presence.Get(partnerID)
	if b == nil {
		// Partner vanished between match decision and room creation; the
		// scan only offers live entries, so this is a defensive drop.
		h.log.Warn().Str("partner_id", partnerID).Msg("matched partner no longer live")
		return
	}

	room := h.rooms.Create(a, b, topic)
	ev := &Event{
		Kind:  EventMatchFound,
		Room:  room.ID,
		Users: []string{a.ID, b.ID},
		Topic: topic,
	}
	h.sendEvent(a, ev)
	h.sendEvent(b, ev)

	h.log.Info().
		Str("room", room.ID).
		Str("a", a.ID).
		Str("b", b.ID).
		Str("topic", topic).
		Msg("matched")
}

func (h *Hub) sendEvent(c *Client, ev *Event) {
	if c == nil || !h.presence.IsLive(c.ID) {
		return
	}
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
