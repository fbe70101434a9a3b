package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownProfile indicates the named repeat profile doesn't exist.
	ErrUnknownProfile = errors.New("unknown repeat profile")

	// ErrNonPositiveInterval indicates a zero or negative repeat interval.
	ErrNonPositiveInterval = errors.New("repeat interval must be positive")

	// ErrNegativeTimeout indicates a negative repeat timeout.
	ErrNegativeTimeout = errors.New("repeat timeout must not be negative")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
