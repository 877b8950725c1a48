// Command indexer walks the photo libraries and adds new images, with their
// EXIF metadata and embeddings, to the database.
//
//	indexer [--config photoindex.yaml] [--paths /a,/b]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/mypictures/photoindex/internal/cli"
	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/indexer"
	"github.com/mypictures/photoindex/v1/logger"
)

func main() {
	fs := flag.NewFlagSet("indexer", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file (default $PHOTOINDEX_CONFIG)")
	paths := fs.String("paths", "", "comma separated directories to scan instead of the configured ones")
	if _, err := cli.Parse(fs, os.Args[1:]); err != nil {
		os.Exit(cli.ExitUsage)
	}

	cfg := cli.LoadConfig(*configPath)
	roots := cli.SplitList(*paths)

	app := fx.New(
		cli.Infrastructure(cfg),
		embedding.FXModule,
		indexer.FXModule,
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, log logger.Logger, ix *indexer.Indexer) {
			cli.Run(lc, sd, log, func(ctx context.Context) error {
				report, err := ix.Run(ctx, roots)
				printReport(report)
				return err
			})
		}),
	)
	app.Run()
}

func printReport(r indexer.Report) {
	fmt.Printf("\nIndexing complete in %s\n", r.Duration.Round(time.Millisecond))
	fmt.Printf("  found:      %d\n", r.Found)
	fmt.Printf("  new:        %d\n", r.New)
	fmt.Printf("  skipped:    %d (already indexed)\n", r.Skipped)
	fmt.Printf("  duplicates: %d\n", r.Duplicates)
	fmt.Printf("  errors:     %d\n", r.Errors)
}
