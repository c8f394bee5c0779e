package core

import "errors"

var (
	// ErrNotOpen is returned when a frame is sent on a connection that is not open.
	ErrNotOpen = errors.New("connection not open")
	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid connection state")
	// ErrEmptyDraft is returned when an empty draft is submitted.
	ErrEmptyDraft = errors.New("empty draft")
)
