package evdev

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	goevdev "github.com/holoplot/go-evdev"
	"github.com/rs/zerolog"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
)

// Keyboards lists input devices that report key events.
func Keyboards() ([]DeviceInfo, error) {
	paths, err := goevdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("evdev: list devices: %w", err)
	}

	var infos []DeviceInfo
	for _, p := range paths {
		dev, err := goevdev.Open(p.Path)
		if err != nil {
			continue
		}
		types := dev.CapableTypes()
		ok := slices.Contains(types, goevdev.EV_KEY) && slices.Contains(types, goevdev.EV_REP)
		dev.Close()
		if !ok {
			continue
		}
		infos = append(infos, DeviceInfo{Path: p.Path, Name: p.Name})
	}
	return infos, nil
}

// Device streams press and release transitions from one input device.
type Device struct {
	dev  *goevdev.InputDevice
	info DeviceInfo
	grab bool
	log  zerolog.Logger

	ch    chan source.Event[key.Code]
	done  chan struct{}
	once  sync.Once
	errMu sync.Mutex
	err   error
}

// Open opens the device at path and starts reading.
func Open(path string, opts ...Option) (*Device, error) {
	o := newOptions(opts)

	dev, err := goevdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	name, err := dev.Name()
	if err != nil {
		name = ""
	}

	if o.grab {
		if err := dev.Grab(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("evdev: grab %s: %w", path, err)
		}
	}

	d := &Device{
		dev:  dev,
		info: DeviceInfo{Path: path, Name: name},
		grab: o.grab,
		log:  o.log,
		ch:   make(chan source.Event[key.Code]),
		done: make(chan struct{}),
	}
	go d.readLoop()
	return d, nil
}

// OpenKeyboard opens the first device that looks like a keyboard.
func OpenKeyboard(opts ...Option) (*Device, error) {
	infos, err := Keyboards()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if !strings.Contains(strings.ToLower(info.Name), "keyboard") {
			continue
		}
		return Open(info.Path, opts...)
	}
	// Fall back to any key-capable device.
	if len(infos) > 0 {
		return Open(infos[0].Path, opts...)
	}
	return nil, ErrNoKeyboard
}

// Info reports the opened device's path and name.
func (d *Device) Info() DeviceInfo {
	return d.info
}

func (d *Device) readLoop() {
	defer close(d.ch)
	for {
		raw, err := d.dev.ReadOne()
		if err != nil {
			select {
			case <-d.done:
			default:
				d.setErr(err)
				d.log.Error().Err(err).Str("device", d.info.Path).Msg("device read failed")
			}
			return
		}

		ev, ok := translate(raw)
		if !ok {
			continue
		}
		select {
		case d.ch <- ev:
		case <-d.done:
			return
		}
	}
}

// translate turns a raw kernel frame into a key transition. Frames
// other than key presses and releases report ok false; that covers
// sync frames, other event types, and kernel autorepeat.
func translate(raw *goevdev.InputEvent) (source.Event[key.Code], bool) {
	if raw.Type != goevdev.EV_KEY {
		return source.Event[key.Code]{}, false
	}
	var pressed bool
	switch raw.Value {
	case 0:
		pressed = false
	case 1:
		pressed = true
	default:
		// 2 is kernel autorepeat; repeats are synthesized downstream.
		return source.Event[key.Code]{}, false
	}
	return source.Event[key.Code]{
		Time:    time.Unix(int64(raw.Time.Sec), int64(raw.Time.Usec)*1000),
		Key:     key.Code(raw.Code),
		Pressed: pressed,
	}, true
}

// Events returns the transition channel. It closes when the device is
// closed or the read fails; Err distinguishes the two.
func (d *Device) Events() <-chan source.Event[key.Code] {
	return d.ch
}

// Err reports the read failure that ended the stream, if any.
func (d *Device) Err() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}

func (d *Device) setErr(err error) {
	d.errMu.Lock()
	d.err = err
	d.errMu.Unlock()
}

// Close releases the device and ends the event channel.
func (d *Device) Close() error {
	var err error
	d.once.Do(func() {
		close(d.done)
		if d.grab {
			d.dev.Ungrab()
		}
		err = d.dev.Close()
	})
	return err
}
