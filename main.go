// The main package for the ycrawler executable.
package main

import (
	"github.com/ligain/ycrawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
