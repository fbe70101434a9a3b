// Package evdev reads key events from Linux input devices.
//
// Kernel autorepeat frames (value 2) are dropped at the read loop:
// devices opened here deliver only genuine press and release
// transitions, which is what a repeater needs as input. Key codes map
// one to one onto key.Code, since both follow the kernel numbering.
//
// On non-Linux platforms every constructor returns ErrUnsupported.
package evdev

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned on platforms without evdev.
var ErrUnsupported = errors.New("evdev: not supported on this platform")

// ErrNoKeyboard is returned when no capable device is found.
var ErrNoKeyboard = errors.New("evdev: no keyboard device found")

// DeviceInfo identifies one input device.
type DeviceInfo struct {
	Path string
	Name string
}

// Option configures an opened device.
type Option func(*options)

type options struct {
	grab bool
	log  zerolog.Logger
}

// WithGrab takes exclusive hold of the device so its events stop
// reaching other readers, the console included. Use with care.
func WithGrab() Option {
	return func(o *options) {
		o.grab = true
	}
}

// WithLogger attaches a logger to the device's read loop.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
