//go:build linux || darwin

package term

import "golang.org/x/sys/unix"

// DisableEcho turns off terminal echo on fd. The returned function
// restores the previous mode.
func DisableEcho(fd int) (func() error, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	original := *termios

	termios.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, termios); err != nil {
		return nil, err
	}

	restore := func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, &original)
	}
	return restore, nil
}
