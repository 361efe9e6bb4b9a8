// Command dslashgen generates the Wilson-Dirac dslash kernel headers.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dslashgen/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// Commands report their own failures; only usage errors from cobra
	// reach here unprinted.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
