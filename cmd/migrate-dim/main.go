// Command migrate-dim changes the embedding column to the dimension of the
// configured model. Every indexed photo is deleted, so the library must be
// indexed again afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/mypictures/photoindex/internal/cli"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/photostore"
)

func main() {
	fs := flag.NewFlagSet("migrate-dim", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file (default $PHOTOINDEX_CONFIG)")
	dimFlag := fs.Int("dim", 0, "target dimension (default: the configured embedding dimension)")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if _, err := cli.Parse(fs, os.Args[1:]); err != nil {
		os.Exit(cli.ExitUsage)
	}

	cfg := cli.LoadConfig(*configPath)
	dim := cfg.Embedding.Dimension
	if *dimFlag > 0 {
		dim = *dimFlag
	}

	app := fx.New(
		cli.Infrastructure(cfg),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, log logger.Logger, repo *photostore.Repository) {
			cli.Run(lc, sd, log, func(ctx context.Context) error {
				current, err := repo.EmbeddingDimension(ctx)
				if err != nil {
					return err
				}
				if current == dim {
					fmt.Printf("embedding column is already vector(%d); nothing to do\n", dim)
					return nil
				}

				count, err := repo.Count(ctx)
				if err != nil {
					return err
				}
				if !*yes && !confirm(fmt.Sprintf("resize vector(%d) to vector(%d) and delete %d indexed photos?", current, dim, count)) {
					fmt.Println("aborted")
					return nil
				}

				if err := repo.ResizeEmbedding(ctx, dim); err != nil {
					return err
				}
				fmt.Printf("embedding column is now vector(%d); re-run the indexer\n", dim)
				return nil
			})
		}),
	)
	app.Run()
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}
