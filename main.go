// The main package for the tiktok-comments executable.
package main

import (
	"github.com/bitbash-dev/tiktok-comments/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
