// Package main is the entry point for the pricecheck CLI.
package main

import (
	"os"

	"github.com/Simplici0/fleetprice/cmd/pricecheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
