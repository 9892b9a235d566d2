// The main package for the ticketwatch executable.
package main

import (
	"github.com/JakeFAU/ticketwatch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
