// Package chat is the realtime client for the glowmart chat/support gateway.
// It owns one transport connection, authenticates it with the session token,
// queues outbound actions while disconnected, and fans decoded server events
// out to subscribers.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is the realtime chat client. All methods are safe for concurrent
// use. Send-type methods are fire-and-forget: they return immediately in any
// connection state and the action is buffered until the client is
// authenticated.
type Client struct {
	cfg  Config
	log  *zap.Logger
	disp *dispatcher

	mu           sync.Mutex
	transport    Transport
	state        ConnState
	closed       bool // explicit Disconnect; suppresses automatic reconnection
	gen          uint64
	queue        sendQueue
	attempts     int
	lostNotified bool
	backoff      *backoff.ExponentialBackOff
	retryTimer   *time.Timer
}

// NewClient creates a client using the WebSocket transport. It does not
// connect; call Connect or just issue a send, which connects on demand.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if cfg.Session == nil {
		return nil, ErrMissingSession
	}
	cfg.applyDefaults()

	bo := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.ReconnectBaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         cfg.ReconnectMaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	bo.Reset()

	return &Client{
		cfg:       cfg,
		log:       cfg.Logger,
		disp:      newDispatcher(cfg.Logger),
		transport: NewWebSocketTransport(cfg.Logger),
		state:     StateDisconnected,
		backoff:   bo,
	}, nil
}

// SetTransport swaps the transport, for tests and alternate deployments.
// Must be called before the first Connect.
func (c *Client) SetTransport(t Transport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport = t
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the connection sequence. It is a no-op when a connection is
// already in flight or established, and a silent no-op when the session has
// no token (not logged in). Failures surface on the event stream, not as a
// return value.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
	c.attempts = 0
	c.lostNotified = false
	c.backoff.Reset()
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.startLocked()
}

// Disconnect closes the connection, drops any queued outbound actions, and
// prevents automatic reconnection until Connect is called again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.queue.clear()
	c.state = StateDisconnected
	t := c.transport
	c.mu.Unlock()

	_ = t.Close()
	c.log.Info("disconnected")
}

// startLocked begins a connection attempt if the client is idle and a token
// is available. Caller holds c.mu.
func (c *Client) startLocked() {
	if c.state != StateDisconnected {
		return
	}
	token := c.cfg.Session.Token()
	if token == "" {
		c.log.Debug("connect skipped, no session token")
		return
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.state = StateConnecting
	c.gen++
	go c.run(c.gen, token)
}

// run drives one connection session: open, authenticate, flush, dispatch.
func (c *Client) run(gen uint64, token string) {
	if !c.openTransport(gen) {
		c.sessionEnded(gen, false)
		return
	}

	frames := c.transport.Frames()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		_ = c.transport.Close()
		return
	}
	c.state = StateConnected
	auth := encodeOutbound(frameAuth, authFrame{Type: frameAuth, Token: token})
	err := c.transport.Send(auth.data)
	if err == nil {
		c.state = StateAuthenticating
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("failed to send auth frame", zap.Error(err))
		_ = c.transport.Close()
		c.sessionEnded(gen, false)
		return
	}

	if !c.awaitAuth(gen, frames) {
		return
	}

	for data := range frames {
		c.disp.dispatchFrame(data)
	}
	c.sessionEnded(gen, true)
}

// openTransport tries the primary endpoint, then any fallbacks, each bounded
// by ConnectTimeout.
func (c *Client) openTransport(gen uint64) bool {
	endpoints := append([]string{c.cfg.Endpoint}, c.cfg.FallbackEndpoints...)
	for _, ep := range endpoints {
		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if stale {
			return false
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
		err := c.transport.Open(ctx, ep)
		cancel()
		if err == nil {
			c.log.Info("transport open", zap.String("endpoint", ep))
			return true
		}
		c.log.Warn("endpoint failed", zap.String("endpoint", ep), zap.Error(err))
	}
	return false
}

// awaitAuth waits for the server's auth verdict. Application frames arriving
// before the verdict are discarded. Returns true once authenticated.
func (c *Client) awaitAuth(gen uint64, frames <-chan []byte) bool {
	timer := time.NewTimer(c.cfg.AuthTimeout)
	defer timer.Stop()

	for {
		select {
		case data, ok := <-frames:
			if !ok {
				c.sessionEnded(gen, false)
				return false
			}
			var env envelope
			if json.Unmarshal(data, &env) != nil {
				continue
			}
			switch env.Type {
			case frameAuthSuccess:
				return c.authenticated(gen)
			case frameAuthFailure:
				var p authFailurePayload
				_ = json.Unmarshal(data, &p)
				c.authFailed(gen, fmt.Errorf("%w: %s", ErrAuthRejected, p.Message))
				return false
			default:
				c.log.Debug("discarding pre-auth frame", zap.String("type", env.Type))
			}
		case <-timer.C:
			c.authFailed(gen, ErrAuthTimeout)
			return false
		}
	}
}

// authenticated transitions to the authenticated state, resets the retry
// budget, and drains the outbound queue in FIFO order.
func (c *Client) authenticated(gen uint64) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.state = StateAuthenticated
	c.attempts = 0
	c.lostNotified = false
	c.backoff.Reset()
	queued := c.queue.len()
	c.flushLocked()
	c.mu.Unlock()

	c.log.Info("authenticated",
		zap.Int64("userId", c.cfg.Session.UserID()),
		zap.Int("flushed", queued))
	c.disp.dispatch(Event{Kind: EventConnected})
	return true
}

// flushLocked sends queued actions oldest-first. A failed send puts the
// action back at the head and stops the drain; the rest wait for the next
// successful authentication. Caller holds c.mu.
func (c *Client) flushLocked() {
	for {
		a, ok := c.queue.pop()
		if !ok {
			return
		}
		if err := c.transport.Send(a.data); err != nil {
			c.queue.pushFront(a)
			c.log.Warn("flush interrupted", zap.String("kind", a.kind), zap.Error(err))
			return
		}
	}
}

// authFailed handles an explicit rejection or handshake timeout: the
// connection is torn down and not retried; the caller must Connect again
// after refreshing credentials.
func (c *Client) authFailed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.state = StateDisconnected
	c.mu.Unlock()

	_ = c.transport.Close()
	c.log.Error("authentication failed", zap.Error(err))
	c.disp.dispatch(Event{Kind: EventError, Err: err})
}

// sessionEnded handles transport loss: failed open, close during handshake,
// or close after authentication. Unless Disconnect was called it schedules
// the next reconnect attempt, or emits the one-time terminal notification
// when the budget is spent.
func (c *Client) sessionEnded(gen uint64, wasAuthenticated bool) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	notifyLost := false
	if !c.closed {
		notifyLost = c.scheduleReconnectLocked()
	}
	c.mu.Unlock()

	if wasAuthenticated {
		c.disp.dispatch(Event{Kind: EventDisconnected})
	}
	if notifyLost {
		c.disp.dispatch(Event{
			Kind: EventConnectionLost,
			Notification: &Notification{
				Type:    "connection",
				Title:   "Connection lost",
				Message: "Realtime connection lost. Please reconnect.",
			},
		})
	}
}

// scheduleReconnectLocked arms the retry timer for the next attempt. Returns
// true when the attempt budget is exhausted and the terminal notification
// should be emitted (at most once per outage). Caller holds c.mu.
func (c *Client) scheduleReconnectLocked() bool {
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		if c.lostNotified {
			return false
		}
		c.lostNotified = true
		c.log.Error("reconnect attempts exhausted", zap.Int("attempts", c.attempts))
		return true
	}

	c.attempts++
	delay := c.backoff.NextBackOff()
	c.log.Info("scheduling reconnect",
		zap.Int("attempt", c.attempts),
		zap.Duration("delay", delay))
	c.retryTimer = time.AfterFunc(delay, c.retry)
	return false
}

func (c *Client) retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startLocked()
}

// --- Subscriptions ---

// On registers handler for an event kind and returns an unsubscribe function
// that removes exactly this registration. Calling it more than once is a
// no-op.
func (c *Client) On(kind EventKind, handler Handler) func() {
	return c.disp.on(kind, handler)
}

// OnMessage subscribes to incoming chat messages.
func (c *Client) OnMessage(h func(Message)) func() {
	return c.disp.on(EventMessage, func(e Event) { h(*e.Message) })
}

// OnTyping subscribes to typing-indicator updates.
func (c *Client) OnTyping(h func(TypingStatus)) func() {
	return c.disp.on(EventTyping, func(e Event) { h(*e.Typing) })
}

// OnUserStatus subscribes to presence changes.
func (c *Client) OnUserStatus(h func(UserStatus)) func() {
	return c.disp.on(EventUserStatus, func(e Event) { h(*e.UserStatus) })
}

// OnNotification subscribes to server-pushed notifications.
func (c *Client) OnNotification(h func(Notification)) func() {
	return c.disp.on(EventNotification, func(e Event) { h(*e.Notification) })
}

// OnSupportClaimed subscribes to support-claim acknowledgements.
func (c *Client) OnSupportClaimed(h func(SupportClaimed)) func() {
	return c.disp.on(EventSupportClaimed, func(e Event) { h(*e.SupportClaimed) })
}

// OnBroadcastAck subscribes to broadcast acknowledgements.
func (c *Client) OnBroadcastAck(h func(BroadcastAck)) func() {
	return c.disp.on(EventBroadcastAck, func(e Event) { h(*e.BroadcastAck) })
}

// OnError subscribes to application-level error events and authentication
// failures.
func (c *Client) OnError(h func(error)) func() {
	return c.disp.on(EventError, func(e Event) { h(e.Err) })
}

// --- Send API ---

// enqueue sends the action immediately when authenticated, otherwise buffers
// it and kicks off a connection attempt if the client is idle.
func (c *Client) enqueue(a outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAuthenticated {
		if err := c.transport.Send(a.data); err != nil {
			c.log.Warn("send failed, buffering", zap.String("kind", a.kind), zap.Error(err))
			c.queue.push(a)
		}
		return
	}

	c.queue.push(a)
	if !c.closed {
		c.startLocked()
	}
}

// SendMessage sends a direct message and returns the client-generated id the
// UI can use to reconcile its optimistic echo with the server-confirmed
// message.
func (c *Client) SendMessage(recipientID int64, content, chatID string) string {
	clientID := uuid.NewString()
	rid := recipientID
	c.enqueue(encodeOutbound(frameMessage, messageFrame{
		Type:        frameMessage,
		RecipientID: &rid,
		Content:     content,
		ChatID:      chatID,
		ClientID:    clientID,
	}))
	return clientID
}

// SendSupportMessage sends a message with no recipient, routed to the staff
// support inbox.
func (c *Client) SendSupportMessage(content string) string {
	clientID := uuid.NewString()
	c.enqueue(encodeOutbound(frameMessage, messageFrame{
		Type:     frameMessage,
		Content:  content,
		ClientID: clientID,
	}))
	return clientID
}

// SendTypingStatus reports typing activity in a direct chat. Typing
// indicators are only rendered for direct chats, so calls without a concrete
// recipient are ignored.
func (c *Client) SendTypingStatus(chatID string, recipientID int64, isTyping bool) {
	if recipientID <= 0 {
		return
	}
	c.enqueue(encodeOutbound(frameTyping, typingFrame{
		Type:        frameTyping,
		RecipientID: recipientID,
		IsTyping:    isTyping,
		ChatID:      chatID,
	}))
}

// MarkAsRead marks all messages in the chat as read.
func (c *Client) MarkAsRead(chatID string) {
	c.enqueue(encodeOutbound(frameRead, readFrame{Type: frameRead, ChatID: chatID}))
}

// ClaimSupportRequest assigns the user's open support request to the caller
// and sends the initial reply. The backend enforces authorization.
func (c *Client) ClaimSupportRequest(userID int64, initialReply string) {
	c.enqueue(encodeOutbound(frameSupportClaim, supportClaimFrame{
		Type:    frameSupportClaim,
		UserID:  userID,
		Message: initialReply,
	}))
}

// SendBroadcast sends an announcement to the chosen audience. The backend
// enforces authorization.
func (c *Client) SendBroadcast(target BroadcastTarget, title, message string) {
	c.enqueue(encodeOutbound(frameBroadcast, broadcastFrame{
		Type:    frameBroadcast,
		Target:  target,
		Title:   title,
		Message: message,
	}))
}

// QueuedActions reports how many outbound actions are waiting for the next
// successful authentication.
func (c *Client) QueuedActions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.len()
}
