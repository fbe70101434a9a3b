package main

import (
	"fmt"

	"github.com/dshills/typematic"
	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/loop"
	"github.com/dshills/typematic/source"
	"github.com/dshills/typematic/source/replay"
)

// ReplayCommand plays a recorded session through the repeater and
// prints every repeat it produces.
type ReplayCommand struct {
	Input string  `short:"i" long:"input" required:"true" description:"Session file to play" value-name:"<file>"`
	Speed float64 `long:"speed" default:"1" description:"Time dilation factor; 0 replays instantly"`
}

// Execute implements the replay subcommand.
func (command *ReplayCommand) Execute(args []string) error {
	session, err := replay.LoadFile(command.Input)
	if err != nil {
		return err
	}

	player, err := replay.NewPlayer(session, replay.WithDilation(command.Speed))
	if err != nil {
		return err
	}
	return runPrinting(player, session.ID)
}

// runPrinting drives src through a repeater, printing each repeat and
// a closing summary.
func runPrinting(src source.Source[key.Code], label string) error {
	settings, err := loadSettings()
	if err != nil {
		src.Close()
		return err
	}
	log := newLogger(settings)

	ctx, cancel := signalContext()
	defer cancel()

	rep := typematic.New[key.Code, typematic.Count](settings.Timeout, settings.Interval)
	handler := func(k key.Code, _ *typematic.Repeat) typematic.Count {
		fmt.Println(k.String())
		return typematic.Count(1)
	}

	runner := loop.New(rep, src, handler, loop.WithLogger(log))
	log.Info().Str("session", label).Dur("timeout", settings.Timeout).Dur("interval", settings.Interval).Msg("playing")

	if err := runner.Run(ctx); err != nil {
		return err
	}

	snap := runner.Metrics().Snapshot()
	log.Info().
		Uint64("presses", snap.PressesTotal).
		Uint64("releases", snap.ReleasesTotal).
		Uint64("repeats", snap.DeliveriesTotal).
		Dur("peak_handler", snap.PeakHandlerLatency).
		Msg("done")
	return nil
}
