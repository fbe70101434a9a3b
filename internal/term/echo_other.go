//go:build !linux && !darwin

package term

import "errors"

// DisableEcho turns off terminal echo on fd. The returned function
// restores the previous mode.
func DisableEcho(fd int) (func() error, error) {
	return nil, errors.New("term: echo control not supported on this platform")
}
