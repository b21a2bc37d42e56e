package chat

import "errors"

var (
	ErrNotConnected     = errors.New("transport is not open")
	ErrAlreadyOpen      = errors.New("transport is already open")
	ErrConnectionFailed = errors.New("connection failed")
	ErrSendFailed       = errors.New("failed to send frame")
	ErrAuthRejected     = errors.New("authentication rejected by server")
	ErrAuthTimeout      = errors.New("authentication timed out")
	ErrMissingEndpoint  = errors.New("missing endpoint")
	ErrMissingSession   = errors.New("missing credential source")
)
