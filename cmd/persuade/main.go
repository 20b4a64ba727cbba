// Command persuade is the one-shot CLI surface over this module's
// Persuade retry loop: read a schema and an input, run the self-correcting
// loop against a configured provider, and write the validated result.
// Grounded on the teacher's cmd/server/main.go startup sequencing (config
// load, component wiring, then do the work) with the HTTP server itself
// dropped in favor of a single cobra command, since this spec's external
// interface is a CLI, not a service.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
