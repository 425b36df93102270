package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/aqua777/go-ragpipe/cli"
)

// Build variables set by ldflags
var version = "dev"

func main() {
	// Missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
