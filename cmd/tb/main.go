package main

import (
	"context"
	"fmt"
	"os"

	app "github.com/valter-silva-au/taskboard/internal"
	"github.com/valter-silva-au/taskboard/internal/cli"
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

	session, err := app.NewApp(context.Background(), basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing tb: %v\n", err)
		os.Exit(1)
	}

	runErr := cli.Execute()
	if err := session.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing session: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
