// Package main is the entry point for the scrapemd CLI.
package main

import (
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/jmylchreest/scrapemd/cmd/scrapemd/commands"
)

func main() {
	// Set only fails on an invalid GOMAXPROCS, in which case runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(commands.Status(commands.Execute()))
}
