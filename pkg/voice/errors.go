package voice

import "errors"

// Common errors returned by pipelines.
var (
	ErrNotConnected    = errors.New("voice: pipeline not connected")
	ErrAlreadyStarted  = errors.New("voice: pipeline already started")
	ErrMissingAPIKey   = errors.New("voice: missing API key")
	ErrUnknownProvider = errors.New("voice: unknown provider")
)
