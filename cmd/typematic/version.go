package main

import "fmt"

// VersionCommand prints build information.
type VersionCommand struct{}

// Execute implements the version subcommand.
func (command *VersionCommand) Execute(args []string) error {
	fmt.Printf("typematic %s (commit %s, built %s)\n", version, commit, date)
	return nil
}
