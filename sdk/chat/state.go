package chat

// ConnState represents the current state of the realtime connection.
type ConnState int

const (
	// StateDisconnected means the client holds no open transport.
	StateDisconnected ConnState = iota

	// StateConnecting means a transport open is in flight.
	StateConnecting

	// StateConnected means the transport is open but not yet authenticated.
	StateConnected

	// StateAuthenticating means the auth frame was sent and the client is
	// waiting for the server's verdict.
	StateAuthenticating

	// StateAuthenticated means the session is fully established.
	StateAuthenticated
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
