package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Wire discriminator values. Each frame is a JSON object with a "type" field.
const (
	frameAuth         = "auth"
	frameAuthSuccess  = "auth-success"
	frameAuthFailure  = "auth-failure"
	frameMessage      = "message"
	frameTyping       = "typing"
	frameRead         = "read"
	frameSupportClaim = "support-claim"
	frameBroadcast    = "broadcast"
)

// BroadcastTarget selects the audience of a broadcast.
type BroadcastTarget string

const (
	BroadcastAll            BroadcastTarget = "all"
	BroadcastUsers          BroadcastTarget = "users"
	BroadcastCosmetologists BroadcastTarget = "cosmetologists"
)

// --- Outbound frames ---

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type messageFrame struct {
	Type        string `json:"type"`
	RecipientID *int64 `json:"recipientId"`
	Content     string `json:"content"`
	ChatID      string `json:"chatId,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
}

type typingFrame struct {
	Type        string `json:"type"`
	RecipientID int64  `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
	ChatID      string `json:"chatId"`
}

type readFrame struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

type supportClaimFrame struct {
	Type    string `json:"type"`
	UserID  int64  `json:"userId"`
	Message string `json:"message"`
}

type broadcastFrame struct {
	Type    string          `json:"type"`
	Target  BroadcastTarget `json:"target"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
}

// outbound is one queued action: the frame kind plus its encoded payload.
// Actions are encoded when issued so a flush after reconnect replays exactly
// what the caller asked for.
type outbound struct {
	kind string
	data []byte
}

func encodeOutbound(kind string, v any) outbound {
	data, err := json.Marshal(v)
	if err != nil {
		// All outbound frame types are plain structs; this cannot fail
		// for any value a caller can construct.
		panic(fmt.Sprintf("chat: encode %s frame: %v", kind, err))
	}
	return outbound{kind: kind, data: data}
}

// --- Inbound decoding ---

type envelope struct {
	Type string `json:"type"`
}

type authFailurePayload struct {
	Message string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errUnknownFrame = errors.New("unknown frame type")

// decodeFrame turns a raw transport frame into an Event. Auth verdict frames
// are handled by the connection manager before dispatch and map onto the
// error kind here only for completeness.
func decodeFrame(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case frameMessage:
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			return Event{}, fmt.Errorf("decode message: %w", err)
		}
		if m.Subtype == "" {
			m.Subtype = MessageDirect
		}
		return Event{Kind: EventMessage, Message: &m}, nil

	case frameTyping:
		var t TypingStatus
		if err := json.Unmarshal(data, &t); err != nil {
			return Event{}, fmt.Errorf("decode typing: %w", err)
		}
		return Event{Kind: EventTyping, Typing: &t}, nil

	case "user-status":
		var u UserStatus
		if err := json.Unmarshal(data, &u); err != nil {
			return Event{}, fmt.Errorf("decode user-status: %w", err)
		}
		return Event{Kind: EventUserStatus, UserStatus: &u}, nil

	case "notification":
		var n Notification
		if err := json.Unmarshal(data, &n); err != nil {
			return Event{}, fmt.Errorf("decode notification: %w", err)
		}
		return Event{Kind: EventNotification, Notification: &n}, nil

	case "support-claimed":
		var s SupportClaimed
		if err := json.Unmarshal(data, &s); err != nil {
			return Event{}, fmt.Errorf("decode support-claimed: %w", err)
		}
		return Event{Kind: EventSupportClaimed, SupportClaimed: &s}, nil

	case "broadcast-ack":
		var b BroadcastAck
		if err := json.Unmarshal(data, &b); err != nil {
			return Event{}, fmt.Errorf("decode broadcast-ack: %w", err)
		}
		return Event{Kind: EventBroadcastAck, BroadcastAck: &b}, nil

	case "error":
		var p errorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("decode error frame: %w", err)
		}
		return Event{Kind: EventError, Err: errors.New(p.Message)}, nil

	case frameAuthSuccess, frameAuthFailure:
		return Event{}, fmt.Errorf("%w: %s outside handshake", errUnknownFrame, env.Type)

	default:
		return Event{}, fmt.Errorf("%w: %q", errUnknownFrame, env.Type)
	}
}
