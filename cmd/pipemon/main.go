package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mark2-vision/pipemon/cmd/pipemon/cmd"
	"github.com/mark2-vision/pipemon/internal/launcher"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Relay the child's exit status verbatim; the run command has
		// already reported it on the console.
		var exitErr *launcher.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
