package chat

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenSource provides the current access token and user id from the
// application's session store. An empty token means "not logged in".
type TokenSource interface {
	Token() string
	UserID() int64
}

// StaticSession is a fixed-credential TokenSource, useful for tests and
// short-lived tools. The setters make it usable as a tiny session store.
type StaticSession struct {
	mu     sync.RWMutex
	token  string
	userID int64
}

func NewStaticSession(token string, userID int64) *StaticSession {
	return &StaticSession{token: token, userID: userID}
}

func (s *StaticSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *StaticSession) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetToken replaces the stored token, e.g. after a refresh.
func (s *StaticSession) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

type Config struct {
	// Endpoint is the WebSocket URL of the chat gateway.
	Endpoint string

	// FallbackEndpoints are tried in order when the primary endpoint fails
	// to open. Optional; most deployments leave this empty.
	FallbackEndpoints []string

	// Session supplies the credential token for the auth handshake.
	Session TokenSource

	ConnectTimeout time.Duration
	AuthTimeout    time.Duration

	// Reconnect policy: delays start at ReconnectBaseDelay, double per
	// attempt, and are capped at ReconnectMaxDelay. After
	// MaxReconnectAttempts consecutive failures the client stops retrying.
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int

	Logger *zap.Logger
}

const (
	defaultConnectTimeout       = 5 * time.Second
	defaultAuthTimeout          = 10 * time.Second
	defaultReconnectBaseDelay   = 1 * time.Second
	defaultReconnectMaxDelay    = 30 * time.Second
	defaultMaxReconnectAttempts = 5
)

func (c *Config) applyDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.AuthTimeout == 0 {
		c.AuthTimeout = defaultAuthTimeout
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = defaultReconnectBaseDelay
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = defaultReconnectMaxDelay
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
