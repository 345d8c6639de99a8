package identity

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrUnknownDriver = errors.New("unknown identity driver")
	ErrRoster        = errors.New("invalid roster")
	ErrClosed        = errors.New("identity store closed")
)
