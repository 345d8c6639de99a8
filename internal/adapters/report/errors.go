package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrUnknownFormat = errors.New("unknown report format")
	ErrRender        = errors.New("render report failed")
)
