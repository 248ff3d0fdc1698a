// Package main is the entry point for the shelltint CLI and dashboard.
package main

import (
	"os"

	"github.com/shelltint/shelltint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
