package core

import "errors"

var (
	// ErrResource indicates a missing or unloadable ROM image. It is fatal
	// to Start: the session remains Stopped.
	ErrResource = errors.New("resource error")

	// ErrInvalidState indicates an operation requested while the session is
	// in the wrong lifecycle state. The operation is rejected with no side
	// effect.
	ErrInvalidState = errors.New("invalid session state")

	// ErrInvalidAction indicates an input token outside the accepted action
	// vocabulary. The operation is rejected with no side effect.
	ErrInvalidAction = errors.New("invalid action")

	// ErrAgent indicates a decision backend failure (network error,
	// malformed response, empty commentary). Recovered locally by the
	// control loop; never fatal to the session.
	ErrAgent = errors.New("agent error")

	// ErrAgentTimeout indicates a decision request exceeded its deadline.
	// Recovered locally; the decision point is retried on the next
	// eligible tick.
	ErrAgentTimeout = errors.New("agent timeout")
)
