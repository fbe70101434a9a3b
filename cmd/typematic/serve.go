package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dshills/typematic/key"
	"github.com/dshills/typematic/source"
	"github.com/dshills/typematic/source/remote"
	"github.com/dshills/typematic/source/replay"
)

// ServeCommand broadcasts key events to websocket subscribers, either
// live from a device or replayed from a session file.
type ServeCommand struct {
	Addr  string  `long:"addr" default:":8137" description:"Listen address"`
	Input string  `short:"i" long:"input" description:"Broadcast a recorded session instead of the live device" value-name:"<file>"`
	Speed float64 `long:"speed" default:"1" description:"Time dilation when broadcasting a session"`
	Grab  bool    `long:"grab" description:"Take exclusive hold of the device while serving"`
}

// Execute implements the serve subcommand.
func (command *ServeCommand) Execute(args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger(settings)

	ctx, cancel := signalContext()
	defer cancel()

	var src source.Source[key.Code]
	if command.Input != "" {
		session, err := replay.LoadFile(command.Input)
		if err != nil {
			return err
		}
		player, err := replay.NewPlayer(session, replay.WithDilation(command.Speed))
		if err != nil {
			return err
		}
		src = player
	} else {
		dev, err := openDevice(settings.Device, command.Grab, log)
		if err != nil {
			return err
		}
		src = dev
	}
	defer src.Close()

	broadcaster := remote.NewBroadcaster(remote.WithBroadcastLogger(log))
	defer broadcaster.Close()

	mux := http.NewServeMux()
	mux.Handle("/events", broadcaster)
	server := &http.Server{Addr: command.Addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	pumpDone := make(chan struct{})
	go func() {
		broadcaster.Pump(src)
		close(pumpDone)
	}()

	log.Info().Str("addr", command.Addr).Str("session", broadcaster.Session()).Msg("broadcasting on /events")

	select {
	case <-ctx.Done():
	case <-pumpDone:
		log.Info().Msg("source ended")
	case err := <-serveErr:
		return err
	}

	src.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
