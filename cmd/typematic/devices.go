package main

import (
	"fmt"

	"github.com/dshills/typematic/source/evdev"
)

// DevicesCommand lists input devices that can feed the repeater.
type DevicesCommand struct{}

// Execute implements the devices subcommand.
func (command *DevicesCommand) Execute(args []string) error {
	infos, err := evdev.Keyboards()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no key-capable devices found")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-24s %s\n", info.Path, info.Name)
	}
	return nil
}
