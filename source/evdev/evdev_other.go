//go:build !linux

package evdev

import (
	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

// Keyboards lists input devices that report key events.
func Keyboards() ([]DeviceInfo, error) {
	return nil, ErrUnsupported
}

// Device streams press and release transitions from one input device.
type Device struct{}

// Open opens the device at path and starts reading.
func Open(path string, opts ...Option) (*Device, error) {
	return nil, ErrUnsupported
}

// OpenKeyboard opens the first device that looks like a keyboard.
func OpenKeyboard(opts ...Option) (*Device, error) {
	return nil, ErrUnsupported
}

// Info reports the opened device's path and name.
func (d *Device) Info() DeviceInfo { return DeviceInfo{} }

// Events returns the transition channel.
func (d *Device) Events() <-chan source.Event[key.Code] { return nil }

// Err reports the read failure that ended the stream, if any.
func (d *Device) Err() error { return nil }

// Close releases the device and ends the event channel.
func (d *Device) Close() error { return nil }
