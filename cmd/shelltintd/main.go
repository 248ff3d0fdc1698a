// Package main is the entry point for the shelltintd daemon.
package main

import (
	"os"

	"github.com/shelltint/shelltint/internal/daemon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
