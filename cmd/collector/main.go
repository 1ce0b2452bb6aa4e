package main

import (
	"os"

	"github.com/mozilla-services/antenna/cmd/collector/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(commands.ExitCodeFor(err))
	}
}
