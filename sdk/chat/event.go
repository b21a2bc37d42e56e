package chat

import (
	"encoding/json"
	"time"
)

// EventKind discriminates decoded inbound events and client lifecycle events.
type EventKind string

const (
	EventMessage        EventKind = "message"
	EventTyping         EventKind = "typing"
	EventUserStatus     EventKind = "user-status"
	EventNotification   EventKind = "notification"
	EventSupportClaimed EventKind = "support-claimed"
	EventBroadcastAck   EventKind = "broadcast-ack"
	EventError          EventKind = "error"

	// Lifecycle kinds emitted by the client itself, on the same stream as
	// server events so the UI watches a single channel.
	EventConnected      EventKind = "connected"
	EventDisconnected   EventKind = "disconnected"
	EventConnectionLost EventKind = "connection-lost"
)

// MessageSubtype distinguishes direct, support and broadcast messages.
type MessageSubtype string

const (
	MessageDirect    MessageSubtype = "DIRECT"
	MessageSupport   MessageSubtype = "SUPPORT"
	MessageBroadcast MessageSubtype = "BROADCAST"
)

// Message is a chat message received from the server.
type Message struct {
	ID            int64          `json:"id"`
	ClientID      string         `json:"clientId,omitempty"`
	Content       string         `json:"content"`
	SenderID      int64          `json:"senderId"`
	SenderName    string         `json:"senderName"`
	RecipientID   *int64         `json:"recipientId,omitempty"`
	RecipientName string         `json:"recipientName,omitempty"`
	ChatID        string         `json:"chatId"`
	CreatedAt     time.Time      `json:"createdAt"`
	Read          bool           `json:"read"`
	Subtype       MessageSubtype `json:"subtype"`
}

// TypingStatus reports that a user started or stopped typing in a chat.
type TypingStatus struct {
	ChatID   string `json:"chatId"`
	UserID   int64  `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// UserStatus reports a presence change.
type UserStatus struct {
	UserID int64 `json:"userId"`
	Online bool  `json:"online"`
}

// Notification is a server-pushed notification, also used by the client to
// carry connection-lifecycle notices.
type Notification struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Source  string          `json:"source,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SupportClaimed acknowledges a support-claim request.
type SupportClaimed struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BroadcastAck acknowledges a broadcast request.
type BroadcastAck struct {
	Success bool `json:"success"`
}

// Event is the tagged union delivered to subscribers. Kind selects which
// payload field is set.
type Event struct {
	Kind EventKind

	Message        *Message
	Typing         *TypingStatus
	UserStatus     *UserStatus
	Notification   *Notification
	SupportClaimed *SupportClaimed
	BroadcastAck   *BroadcastAck
	Err            error
}

// Handler is a callback invoked for each dispatched event.
type Handler func(e Event)
