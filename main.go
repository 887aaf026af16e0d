// The main package for the hunter-searcher executable.
package main

import (
	"github.com/JakeFAU/hunter-searcher/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
