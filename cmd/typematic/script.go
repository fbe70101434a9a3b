package main

import (
	"github.com/dshills/typematic/source/replay"
	"github.com/dshills/typematic/source/script"
)

// ScriptCommand compiles a Lua event script and either runs it
// through the repeater or writes the compiled session out.
type ScriptCommand struct {
	File   string  `short:"f" long:"file" required:"true" description:"Lua script to run" value-name:"<script.lua>"`
	Speed  float64 `long:"speed" default:"1" description:"Time dilation factor; 0 runs instantly"`
	Output string  `short:"o" long:"output" description:"Write the compiled session here instead of running it" value-name:"<file>"`
}

// Execute implements the script subcommand.
func (command *ScriptCommand) Execute(args []string) error {
	session, err := script.Compile(command.File)
	if err != nil {
		return err
	}

	if command.Output != "" {
		return session.WriteFile(command.Output)
	}

	player, err := replay.NewPlayer(session, replay.WithDilation(command.Speed))
	if err != nil {
		return err
	}
	return runPrinting(player, session.ID)
}
