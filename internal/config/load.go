package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Environment variables recognized by the loader.
const (
	EnvProfile  = "TYPEMATIC_PROFILE"
	EnvTimeout  = "TYPEMATIC_TIMEOUT"
	EnvInterval = "TYPEMATIC_INTERVAL"
	EnvDevice   = "TYPEMATIC_DEVICE"
	EnvLogLevel = "TYPEMATIC_LOG_LEVEL"
)

// Loader reads configuration through pluggable file system and
// environment seams.
type Loader struct {
	fs        FileSystem
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader over the real file system and process
// environment.
func NewLoader() *Loader {
	return NewLoaderWith(DefaultFS(), os.LookupEnv)
}

// NewLoaderWith creates a loader with custom seams.
func NewLoaderWith(fsys FileSystem, lookupEnv func(string) (string, bool)) *Loader {
	return &Loader{fs: fsys, lookupEnv: lookupEnv}
}

// Load reads the file at path and applies environment overrides. A
// missing file is not an error; defaults are used.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	data, err := l.fs.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// File doesn't exist, not an error
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, &ParseError{
				Path:    path,
				Message: err.Error(),
				Err:     err,
			}
		}
		if cfg.Profile == "" {
			cfg.Profile = DefaultProfile
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays TYPEMATIC_* variables onto cfg.
func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.lookupEnv(EnvProfile); ok {
		cfg.Profile = v
	}
	if v, ok := l.lookupEnv(EnvTimeout); ok {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = &d
	}
	if v, ok := l.lookupEnv(EnvInterval); ok {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("parsing %s: %w", EnvInterval, err)
		}
		cfg.Interval = &d
	}
	if v, ok := l.lookupEnv(EnvDevice); ok {
		cfg.Device = v
	}
	if v, ok := l.lookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	return nil
}

// Load reads the config at path with the default loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
