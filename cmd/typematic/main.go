// Package main is the entry point for the typematic CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/dshills/typematic/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type commandLineOpts struct {
	Config   string `short:"c" long:"config" description:"Path to configuration file" value-name:"<file>"`
	Profile  string `long:"profile" description:"Repeat profile (fast, medium, slow)"`
	Timeout  string `long:"timeout" description:"Repeat timeout override (e.g. 300ms)" value-name:"<duration>"`
	Interval string `long:"interval" description:"Repeat interval override (e.g. 40ms)" value-name:"<duration>"`
	Debug    bool   `short:"d" long:"debug" description:"Enable debug logging"`
	Quiet    bool   `short:"q" long:"quiet" description:"Only log warnings and errors"`

	Demo    DemoCommand    `command:"demo" description:"Visualize key repeat in the terminal"`
	Record  RecordCommand  `command:"record" description:"Capture key events into a session file"`
	Replay  ReplayCommand  `command:"replay" description:"Play back a recorded session"`
	Script  ScriptCommand  `command:"script" description:"Run a Lua event script"`
	Serve   ServeCommand   `command:"serve" description:"Broadcast key events over websockets"`
	Devices DevicesCommand `command:"devices" description:"List key-capable input devices"`
	Version VersionCommand `command:"version" description:"Show version information"`
}

var opts commandLineOpts

func main() {
	os.Exit(run())
}

func run() int {
	parser := flags.NewParser(&opts, flags.Default)

	_, err := parser.Parse()
	if flags.WroteHelp(err) {
		return 0
	}
	if err != nil {
		if _, ok := err.(*flags.Error); !ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// newLogger builds the CLI logger; --debug and --quiet outrank the
// configured level.
func newLogger(settings config.Settings) zerolog.Logger {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if opts.Quiet {
		level = zerolog.WarnLevel
	}
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// loadSettings resolves config file, environment, and global flags.
func loadSettings() (config.Settings, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return config.Settings{}, err
	}
	if err := applyFlags(cfg); err != nil {
		return config.Settings{}, err
	}
	return cfg.Resolve()
}

// applyFlags overlays the global timing flags onto cfg. Flags outrank
// both the config file and the environment.
func applyFlags(cfg *config.Config) error {
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.Timeout != "" {
		var d config.Duration
		if err := d.UnmarshalText([]byte(opts.Timeout)); err != nil {
			return fmt.Errorf("parsing --timeout: %w", err)
		}
		cfg.Timeout = &d
	}
	if opts.Interval != "" {
		var d config.Duration
		if err := d.UnmarshalText([]byte(opts.Interval)); err != nil {
			return fmt.Errorf("parsing --interval: %w", err)
		}
		cfg.Interval = &d
	}
	return nil
}

func configPath() string {
	if opts.Config != "" {
		return opts.Config
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "typematic.toml"
	}
	return filepath.Join(dir, "typematic", "typematic.toml")
}

// signalContext is canceled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
