package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 10 * time.Second
	wsFrameBuffer      = 100
)

// wsTransport implements Transport over a WebSocket connection. It can be
// reopened after a close, so the connection manager reuses one instance
// across reconnect cycles.
type wsTransport struct {
	log *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	frames chan []byte

	writeMu sync.Mutex
}

// NewWebSocketTransport creates the production WebSocket transport.
func NewWebSocketTransport(log *zap.Logger) Transport {
	if log == nil {
		log = zap.NewNop()
	}
	return &wsTransport{log: log}
}

func (w *wsTransport) Open(ctx context.Context, endpoint string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		return ErrAlreadyOpen
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	frames := make(chan []byte, wsFrameBuffer)
	w.conn = conn
	w.frames = frames

	go w.readLoop(conn, frames)
	return nil
}

func (w *wsTransport) readLoop(conn *websocket.Conn, frames chan []byte) {
	defer func() {
		close(frames)
		w.mu.Lock()
		if w.conn == conn {
			w.conn = nil
		}
		w.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		select {
		case frames <- data:
		default:
			w.log.Warn("inbound frame buffer full, dropping frame")
		}
	}
}

func (w *wsTransport) Send(data []byte) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

func (w *wsTransport) Frames() <-chan []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

func (w *wsTransport) Close() error {
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	w.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
