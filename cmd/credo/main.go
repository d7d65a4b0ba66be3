// Package main is the entry point for the credo CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/credo/internal/cli"
	"github.com/AndreyAkinshin/credo/internal/h5file"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], h5file.Opener))
}
