package service

import "errors"

// Sentinel kinds for report generation. Callers map them to responses with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidLog     = errors.New("invalid attendance log")
	ErrUnknownFormat  = errors.New("unknown report format")
	ErrLookup         = errors.New("identity lookup failed")
	ErrRender         = errors.New("render report failed")
)
