// Package main is the entry point for the gretildb CLI tool.
package main

import (
	"os"

	"github.com/angirov/gretildb/internal/cli"
)

func main() {
	// Violations exit with code 1 inside the commands; an error reaching
	// this point is a setup or input problem.
	if err := cli.Execute(); err != nil {
		os.Exit(2)
	}
}
