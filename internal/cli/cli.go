// Package cli holds the plumbing shared by the command line tools: flag
// parsing that tolerates flags after positional arguments, and an fx
// application that runs a single command and exits with its status.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/fx"

	"github.com/mypictures/photoindex/v1/config"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photostore"
	"github.com/mypictures/photoindex/v1/postgres"
	"github.com/mypictures/photoindex/v1/tracer"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Parse parses args with fs and returns the positional arguments. Unlike
// fs.Parse it keeps going after a positional argument, so
// `search "red car" --limit 5` works.
func Parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// SplitList splits a comma separated flag value, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig loads the configuration or exits with a usage error.
func LoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}
	return cfg
}

// Infrastructure supplies every section of cfg and installs the modules all
// tools share: logging, database, photo store, metrics and tracing.
func Infrastructure(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(
			cfg.Logger,
			cfg.Postgres,
			cfg.Embedding,
			cfg.Indexer,
			cfg.Search,
			cfg.Metrics,
			cfg.Tracer,
		),
		fx.WithLogger(logger.FXEventLogger),
		logger.FXModule,
		postgres.FXModule,
		photostore.FXModule,
		metrics.FXModule,
		tracer.FXModule,
	)
}

// Command is the body of a tool. ctx is cancelled when the application is
// asked to stop.
type Command func(ctx context.Context) error

// Run registers cmd to start once the application is up. When it returns
// the application shuts down, exiting non-zero if cmd failed.
func Run(lc fx.Lifecycle, sd fx.Shutdowner, log logger.Logger, cmd Command) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := ExitOK
				if err := cmd(ctx); err != nil {
					log.Error("command failed", err, nil)
					code = ExitFailure
				}
				if err := sd.Shutdown(fx.ExitCode(code)); err != nil {
					log.Error("shutdown failed", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
