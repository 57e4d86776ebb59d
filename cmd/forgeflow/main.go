package main

import (
	"os"

	"github.com/forgeflow-dev/forgeflow/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
