// Package main is the entry point for the missal CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/zapponejosh/missal1962/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own ExitErrors; anything else is a usage error
	// raised by cobra before a command ran.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
