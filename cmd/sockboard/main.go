package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/sockboard/internal"
	"github.com/valter-silva-au/sockboard/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing sockboard: %v\n", err)
		os.Exit(1)
	}

	runErr := cli.Execute()
	if closeErr := a.Close(); runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
