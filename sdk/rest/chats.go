package rest

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ChatSummary is one entry in the user's chat list.
type ChatSummary struct {
	ChatID        string    `json:"chatId"`
	PeerID        int64     `json:"peerId"`
	PeerName      string    `json:"peerName"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	Unread        int       `json:"unread"`
}

// HistoryMessage is one persisted message from the chat history endpoint.
type HistoryMessage struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	SenderID    int64     `json:"senderId"`
	SenderName  string    `json:"senderName"`
	RecipientID *int64    `json:"recipientId,omitempty"`
	ChatID      string    `json:"chatId"`
	CreatedAt   time.Time `json:"createdAt"`
	Read        bool      `json:"read"`
	Subtype     string    `json:"subtype"`
}

// Chats returns the caller's chat list.
func (c *Client) Chats(ctx context.Context) ([]ChatSummary, error) {
	raw, err := c.Get(ctx, "/chats")
	if err != nil {
		return nil, err
	}
	return Items[ChatSummary](raw)
}

// ChatHistory returns up to limit persisted messages for a chat, oldest
// first. A non-positive limit uses the server default.
func (c *Client) ChatHistory(ctx context.Context, chatID string, limit int) ([]HistoryMessage, error) {
	path := "/chats/" + url.PathEscape(chatID) + "/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	raw, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return Items[HistoryMessage](raw)
}

// UnreadCount returns the total number of unread messages across chats.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	raw, err := c.Get(ctx, "/chats/unread-count")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, err
	}
	return n, nil
}
