package chat

import "context"

// Transport is a single bidirectional, message-oriented connection. The
// connection manager is the only caller; it is transport-implementation
// agnostic so the same client runs over WebSocket in production and over the
// in-memory mock in tests.
type Transport interface {
	// Open establishes the connection to the given endpoint. The context
	// bounds the attempt.
	Open(ctx context.Context, endpoint string) error

	// Send writes one frame. It must be safe to call concurrently with
	// reads from Frames.
	Send(data []byte) error

	// Frames returns the inbound frame channel for the current session.
	// The channel is closed when the connection is lost or closed.
	Frames() <-chan []byte

	// Close tears down the connection. Closing an unopened transport is a
	// no-op.
	Close() error
}
