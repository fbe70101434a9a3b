// Package replay records raw key sessions and plays them back.
//
// A Session is a YAML document holding a stream of key transitions as
// offsets from the start of the capture. Sessions are produced by a
// Recorder wrapped around any live source and consumed by a Player,
// which maps the recorded timeline back onto the wall clock, optionally
// compressed or stretched.
package replay

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/typematic/key"
)

// Offset is a duration from the start of a session. It serializes in
// time.Duration string form ("200ms", "1.5s").
type Offset time.Duration

// MarshalYAML encodes the offset as a duration string.
func (o Offset) MarshalYAML() (any, error) {
	return time.Duration(o).String(), nil
}

// UnmarshalYAML decodes a duration string.
func (o *Offset) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("replay: bad offset %q: %w", s, err)
	}
	if d < 0 {
		return fmt.Errorf("replay: negative offset %q", s)
	}
	*o = Offset(d)
	return nil
}

// TimedEvent is one transition within a session, addressed by key name.
type TimedEvent struct {
	At      Offset `yaml:"at"`
	Key     string `yaml:"key"`
	Pressed bool   `yaml:"pressed"`
}

// Session is a recorded capture.
type Session struct {
	// ID uniquely identifies the capture.
	ID string `yaml:"session"`

	// Recorded is the wall time of the first event.
	Recorded time.Time `yaml:"recorded,omitempty"`

	// Events holds the transitions in non-decreasing offset order.
	Events []TimedEvent `yaml:"events"`
}

// Validate checks that every event names a known key and that offsets
// do not go backward.
func (s Session) Validate() error {
	var prev Offset
	for i, ev := range s.Events {
		if _, ok := key.FromName(ev.Key); !ok {
			return fmt.Errorf("replay: event %d: %w: %q", i, ErrUnknownKey, ev.Key)
		}
		if ev.At < prev {
			return fmt.Errorf("replay: event %d: %w: %v after %v", i, ErrOutOfOrder, time.Duration(ev.At), time.Duration(prev))
		}
		prev = ev.At
	}
	return nil
}

// Load reads and validates a session document.
func Load(r io.Reader) (Session, error) {
	var s Session
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Session{}, fmt.Errorf("replay: decode session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// LoadFile reads and validates the session document at path.
func LoadFile(path string) (Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return Session{}, err
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Write serializes the session as YAML.
func (s Session) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("replay: encode session: %w", err)
	}
	return enc.Close()
}

// WriteFile serializes the session to the file at path.
func (s Session) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Duration returns the offset of the last event, the length of the
// recorded timeline.
func (s Session) Duration() time.Duration {
	if len(s.Events) == 0 {
		return 0
	}
	return time.Duration(s.Events[len(s.Events)-1].At)
}
