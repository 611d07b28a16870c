package http

import (
	"encoding/json"

	"github.com/pairlink/pairlink-server/internal/core"
	"github.com/pairlink/pairlink-server/internal/proto"
)

// inboundToCommand maps a wire envelope to a core command. Malformed
// payloads never escalate past a protocol error: the connection and any
// room the client is in stay untouched.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeFindMatch:
		var find proto.FindMatchData
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &find); err != nil {
				return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid findMatch payload"}
			}
		}
		return &core.Command{
			Kind:  core.CommandFindMatch,
			Topic: find.Topic,
		}, nil
	case proto.InboundTypeSignal:
		var sig proto.SignalData
		if err := json.Unmarshal(inbound.Data, &sig); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid signal payload"}
		}
		if sig.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}
		}
		return &core.Command{
			Kind: core.CommandSignal,
			Room: sig.Room,
			Data: sig.Data,
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid sendMessage payload"}
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: msg.Room,
			Text: msg.Text,
		}, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.LeaveRoomData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid leaveRoom payload"}
		}
		if leave.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.Room,
		}, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMatchFound:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "matchFound",
			Data: proto.EventMatchFound{
				Room:  event.Room,
				Users: event.Users,
				Topic: event.Topic,
			},
		}
	case core.EventMatchTimeout:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "matchTimeout",
			Data:  proto.EventMatchTimeout{Message: event.Message},
		}
	case core.EventSignal:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "signal",
			Data: proto.EventSignal{
				Sender: event.Sender,
				Data:   event.Data,
			},
		}
	case core.EventChatMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "chatMessage",
			Data: proto.EventChatMessage{
				Sender: event.Sender,
				Text:   event.Text,
			},
		}
	case core.EventCallEnded:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "callEnded",
			Data:  struct{}{},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
