// Package main is the entry point for texrun.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/texrun/cmd/texrun/commands"
	"go.trai.ch/texrun/internal/app"
	"go.trai.ch/texrun/internal/core/domain"
	_ "go.trai.ch/texrun/internal/wiring"
)

// logSettings is implemented by loggers whose verbosity and format can be
// changed from the command line.
type logSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

func main() {
	os.Exit(run())
}

func run(opts ...func(*app.App)) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := components.Telemetry.Close(); err != nil {
			components.Logger.Error(err)
		}
	}()

	// Apply options
	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetLogHook(func(verbose, json bool) {
		if l, ok := components.Logger.(logSettings); ok {
			l.SetVerbose(verbose)
			l.SetJSON(json)
		}
	})

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		// The report already described the failed build.
		if errors.Is(err, domain.ErrBuildFailed) || errors.Is(err, domain.ErrBuildAborted) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
