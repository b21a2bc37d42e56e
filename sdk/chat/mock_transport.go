package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockTransport is an in-memory Transport for tests and the demo. It records
// every frame the client sends, can be scripted to fail opens or sends, and
// by default answers the auth frame with auth-success so a client wired to it
// reaches the authenticated state without a server.
type MockTransport struct {
	mu     sync.Mutex
	open   bool
	frames chan []byte

	sent      [][]byte
	opens     int
	openTimes []time.Time
	endpoints []string

	failOpens  int
	failSend   bool
	autoAuth   bool
	rejectAuth bool
}

// NewMockTransport creates a mock transport with auto-auth enabled.
func NewMockTransport() *MockTransport {
	return &MockTransport{autoAuth: true}
}

// SetAutoAuth controls whether the mock answers auth frames on its own.
// Disable it to exercise the auth-timeout path.
func (m *MockTransport) SetAutoAuth(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoAuth = v
}

// SetRejectAuth makes the mock answer auth frames with auth-failure.
func (m *MockTransport) SetRejectAuth(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectAuth = v
}

// FailNextOpens makes the next n Open calls fail with ErrConnectionFailed.
func (m *MockTransport) FailNextOpens(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpens = n
}

// SetFailOnSend makes Send fail with ErrSendFailed.
func (m *MockTransport) SetFailOnSend(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend = v
}

func (m *MockTransport) Open(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opens++
	m.openTimes = append(m.openTimes, time.Now())
	m.endpoints = append(m.endpoints, endpoint)

	if m.failOpens > 0 {
		m.failOpens--
		return ErrConnectionFailed
	}
	if m.open {
		return ErrAlreadyOpen
	}

	m.open = true
	m.frames = make(chan []byte, 64)
	return nil
}

func (m *MockTransport) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return ErrNotConnected
	}
	if m.failSend {
		return ErrSendFailed
	}

	m.sent = append(m.sent, data)

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Type == frameAuth {
		if m.rejectAuth {
			m.pushLocked(map[string]string{"type": frameAuthFailure, "message": "invalid token"})
		} else if m.autoAuth {
			m.pushLocked(map[string]string{"type": frameAuthSuccess})
		}
	}
	return nil
}

func (m *MockTransport) Frames() <-chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		m.open = false
		close(m.frames)
	}
	return nil
}

// DropConnection simulates the server side going away: the frame channel is
// closed without the client having asked for it.
func (m *MockTransport) DropConnection() {
	_ = m.Close()
}

// SimulateFrame delivers v to the client as if the server had sent it.
func (m *MockTransport) SimulateFrame(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	m.pushLocked(v)
}

// SimulateRaw delivers a raw frame, valid JSON or not.
func (m *MockTransport) SimulateRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	select {
	case m.frames <- data:
	default:
	}
}

func (m *MockTransport) pushLocked(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case m.frames <- data:
	default:
	}
}

// SentFrames returns a snapshot of every frame the client sent.
func (m *MockTransport) SentFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentKinds returns the type discriminator of each sent frame, in order.
func (m *MockTransport) SentKinds() []string {
	frames := m.SentFrames()
	kinds := make([]string, 0, len(frames))
	for _, f := range frames {
		var env envelope
		if err := json.Unmarshal(f, &env); err == nil {
			kinds = append(kinds, env.Type)
		}
	}
	return kinds
}

// OpenTimes returns the wall-clock time of each Open call, in order.
func (m *MockTransport) OpenTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.openTimes))
	copy(out, m.openTimes)
	return out
}

// OpenCount returns how many times Open was called.
func (m *MockTransport) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// OpenedEndpoints returns the endpoint of each Open call, in order.
func (m *MockTransport) OpenedEndpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.endpoints))
	copy(out, m.endpoints)
	return out
}
