package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pairlink/pairlink-server/internal/proto"
)

// Dials two connections, requests a match on both, exchanges a chat
// message in the resulting room and leaves. Developer smoke test
// against a running server, not part of the server itself.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	topic := flag.String("topic", "", "optional match topic for both peers")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	connA, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial A: %w", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "bye")

	connB, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial B: %w", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "bye")

	send := func(conn *websocket.Conn, typ string, v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	awaitEvent := func(conn *websocket.Conn, event string) (json.RawMessage, error) {
		for {
			var outbound proto.Outbound
			if err := wsjson.Read(ctx, conn, &outbound); err != nil {
				return nil, fmt.Errorf("read: %w", err)
			}
			fmt.Printf("received type=%s event=%s\n", outbound.Type, outbound.Event)
			if outbound.Error != nil {
				return nil, fmt.Errorf("server error: %s", outbound.Error.Code)
			}
			if outbound.Event == event {
				return json.Marshal(outbound.Data)
			}
		}
	}

	if err := send(connA, proto.InboundTypeFindMatch, proto.FindMatchData{Topic: *topic}); err != nil {
		return err
	}
	if err := send(connB, proto.InboundTypeFindMatch, proto.FindMatchData{Topic: *topic}); err != nil {
		return err
	}

	raw, err := awaitEvent(connA, "matchFound")
	if err != nil {
		return err
	}
	var match proto.EventMatchFound
	if err := json.Unmarshal(raw, &match); err != nil {
		return fmt.Errorf("unmarshal matchFound: %w", err)
	}
	if _, err := awaitEvent(connB, "matchFound"); err != nil {
		return err
	}
	fmt.Printf("matched in room %s (topic %q)\n", match.Room, match.Topic)

	if err := send(connA, proto.InboundTypeSendMessage, proto.SendMessageData{Room: match.Room, Text: *text}); err != nil {
		return err
	}
	if _, err := awaitEvent(connB, "chatMessage"); err != nil {
		return err
	}
	fmt.Println("chat message relayed")

	if err := send(connA, proto.InboundTypeLeaveRoom, proto.LeaveRoomData{Room: match.Room}); err != nil {
		return err
	}
	if _, err := awaitEvent(connB, "callEnded"); err != nil {
		return err
	}
	fmt.Println("room torn down, smoke test passed")

	return nil
}
