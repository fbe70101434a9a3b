package config

import (
	"fmt"
	"sort"
	"time"
)

// Duration is a time.Duration that marshals as a duration string
// ("500ms", "2s") in TOML and environment values.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Profile is a named timeout/interval pairing.
type Profile struct {
	Name     string
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultProfile is used when neither file nor environment names one.
const DefaultProfile = "medium"

var profiles = map[string]Profile{
	"fast":   {Name: "fast", Timeout: 60 * time.Millisecond, Interval: 25 * time.Millisecond},
	"medium": {Name: "medium", Timeout: 500 * time.Millisecond, Interval: 200 * time.Millisecond},
	"slow":   {Name: "slow", Timeout: 2 * time.Second, Interval: time.Second},
}

// LookupProfile returns the named builtin profile.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Profiles returns the builtin profiles sorted by name.
func Profiles() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Config mirrors the TOML config file. Pointer fields distinguish "not
// set" from an explicit zero, since a zero timeout is meaningful.
type Config struct {
	Profile  string    `toml:"profile"`
	Timeout  *Duration `toml:"timeout"`
	Interval *Duration `toml:"interval"`
	Device   string    `toml:"device"`
	LogLevel string    `toml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Profile:  DefaultProfile,
		LogLevel: "info",
	}
}

// Settings is a resolved, validated configuration.
type Settings struct {
	Timeout  time.Duration
	Interval time.Duration
	Device   string
	LogLevel string
}

// Resolve applies the profile, then explicit overrides, and validates
// the result.
func (c *Config) Resolve() (Settings, error) {
	name := c.Profile
	if name == "" {
		name = DefaultProfile
	}
	p, ok := LookupProfile(name)
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	s := Settings{
		Timeout:  p.Timeout,
		Interval: p.Interval,
		Device:   c.Device,
		LogLevel: c.LogLevel,
	}
	if c.Timeout != nil {
		s.Timeout = c.Timeout.Std()
	}
	if c.Interval != nil {
		s.Interval = c.Interval.Std()
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	if s.Interval <= 0 {
		return Settings{}, fmt.Errorf("%w: %v", ErrNonPositiveInterval, s.Interval)
	}
	if s.Timeout < 0 {
		return Settings{}, fmt.Errorf("%w: %v", ErrNegativeTimeout, s.Timeout)
	}
	return s, nil
}
