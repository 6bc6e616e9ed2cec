// Command designer edits data designer projects from a terminal. It keeps
// the server address and the session token in ~/.designer.yaml.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
