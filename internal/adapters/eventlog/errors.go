package eventlog

import "errors"

// Sentinel kinds for log parsing errors. All of them reject the whole upload.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadTimestamp  = errors.New("invalid timestamp")
	ErrMalformed     = errors.New("malformed attendance log")
)
