package main

import (
	"context"
	"fmt"

	"github.com/jaysoffian/dotlock/internal/config"
	"github.com/jaysoffian/dotlock/internal/constants"
	"github.com/jaysoffian/dotlock/internal/proc"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	if err := app.Config.ParseFlags(); err != nil {
		_, _ = fmt.Fprintf(app.Stderr, "Error: %v\n", err)
		app.exit(constants.ExitFailure)
		return
	}

	// Termination signals are deferred from before the first locking step.
	// The acquisition window must run to completion; afterwards a queued
	// signal is honored, and while the wrapped command runs, signals are
	// forwarded to it.
	app.Signals = proc.Hold()

	code, err := app.Run(context.Background())
	if err != nil {
		if app.Logger != nil {
			app.Logger.Error("%v", err)
		} else {
			_, _ = fmt.Fprintf(app.Stderr, "Error: %v\n", err)
		}
	}

	_ = app.Close()
	app.exit(code)
}
