// The main package for the readlevel executable.
package main

import (
	"github.com/periodical-labs/readlevel/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
