package replay

import "errors"

var (
	// ErrUnknownKey indicates a session event naming a key that
	// key.FromName cannot resolve.
	ErrUnknownKey = errors.New("unknown key name")

	// ErrOutOfOrder indicates session events whose offsets go
	// backward.
	ErrOutOfOrder = errors.New("events out of order")
)
