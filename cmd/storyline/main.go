// Package main is the entry point for the storyline CLI.
package main

import (
	"os"

	"storyline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
