package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/titpetric/cli"
)

// Version information injected at build time via ldflags
var (
	Version    = "dev"
	Commit     = "unknown"
	CommitTime = "unknown"
	Branch     = "unknown"
	Modified   = "false"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, ErrGateFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	app := cli.NewApp("verdict")
	app.AddCommand("report", "Build a test report from go test -json output", NewCommand)
	app.DefaultCommand = "report"
	return app.Run()
}
