// Package main is the leapdq command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
