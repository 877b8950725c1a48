// Command setup-db creates the pgvector extension, the photos table and its
// indexes. Running it again is harmless.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/mypictures/photoindex/internal/cli"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/photostore"
)

func main() {
	fs := flag.NewFlagSet("setup-db", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file (default $PHOTOINDEX_CONFIG)")
	if _, err := cli.Parse(fs, os.Args[1:]); err != nil {
		os.Exit(cli.ExitUsage)
	}

	cfg := cli.LoadConfig(*configPath)
	dim := cfg.Embedding.Dimension

	app := fx.New(
		cli.Infrastructure(cfg),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, log logger.Logger, repo *photostore.Repository) {
			cli.Run(lc, sd, log, func(ctx context.Context) error {
				if err := repo.EnsureSchema(ctx, dim); err != nil {
					return err
				}
				fmt.Printf("database ready: table %q with vector(%d) embeddings\n", photo.Table, dim)
				return nil
			})
		}),
	)
	app.Run()
}
