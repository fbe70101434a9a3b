package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/typematic/internal/term"
	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
	"github.com/dshills/typematic/source/evdev"
	"github.com/dshills/typematic/source/replay"
)

// RecordCommand captures device events into a session file.
type RecordCommand struct {
	Output   string `short:"o" long:"output" required:"true" description:"Session file to write" value-name:"<file>"`
	Duration string `long:"duration" description:"Stop recording after this long (e.g. 30s)" value-name:"<duration>"`
	Grab     bool   `long:"grab" description:"Take exclusive hold of the device while recording"`
}

// Execute implements the record subcommand.
func (command *RecordCommand) Execute(args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger(settings)

	ctx, cancel := signalContext()
	defer cancel()
	if command.Duration != "" {
		d, err := time.ParseDuration(command.Duration)
		if err != nil {
			return fmt.Errorf("parsing --duration: %w", err)
		}
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	dev, err := openDevice(settings.Device, command.Grab, log)
	if err != nil {
		return err
	}
	defer dev.Close()
	log.Info().Str("device", dev.Info().Path).Str("name", dev.Info().Name).Msg("recording; press Ctrl-C to stop")

	// Keystrokes would otherwise echo all over the terminal while the
	// device is being captured.
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if restore, err := term.DisableEcho(fd); err == nil {
			defer restore()
		} else {
			log.Debug().Err(err).Msg("could not disable terminal echo")
		}
	}

	rec := replay.NewRecorder(dev)
	drain(ctx, rec)

	session := rec.Session()
	if len(session.Events) == 0 {
		log.Warn().Msg("nothing captured")
	}
	if err := session.WriteFile(command.Output); err != nil {
		return err
	}
	log.Info().Str("session", session.ID).Int("events", len(session.Events)).Str("file", command.Output).Msg("session written")
	return nil
}

// drain consumes src until it ends, closing it once ctx is done.
func drain(ctx context.Context, src source.Source[key.Code]) {
	events := src.Events()
	done := ctx.Done()
	for events != nil {
		select {
		case <-done:
			src.Close()
			done = nil
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		}
	}
}

// openDevice opens the configured device path, or finds a keyboard.
func openDevice(path string, grab bool, log zerolog.Logger) (*evdev.Device, error) {
	devOpts := []evdev.Option{evdev.WithLogger(log)}
	if grab {
		devOpts = append(devOpts, evdev.WithGrab())
	}
	if path != "" {
		return evdev.Open(path, devOpts...)
	}
	return evdev.OpenKeyboard(devOpts...)
}
