// emcee recovers monoalphabetic substitution ciphers by hill-climbing
// through keys against a symbol-transition model of a reference corpus.
package main

import (
	"os"

	"github.com/corey/emcee/cmd/emcee/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
