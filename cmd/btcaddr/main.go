// Package main is the entry point for the btcaddr CLI.
package main

import (
	"os"

	"github.com/neverDefined/go-btcaddr/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
