// Command search finds photos matching a natural-language description.
//
//	search "dog on a beach" [--limit 20] [--after 2023-01-01] [--before 2023-12-31] [--min-similarity 0.2]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/fx"

	"github.com/mypictures/photoindex/internal/cli"
	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/search"
)

func main() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file (default $PHOTOINDEX_CONFIG)")
	limit := fs.Int("limit", 0, "number of results (default from configuration)")
	after := fs.String("after", "", "only photos taken on or after YYYY-MM-DD")
	before := fs.String("before", "", "only photos taken on or before YYYY-MM-DD")
	minSimilarity := fs.Float64("min-similarity", -2, "drop results scoring below this (default from configuration)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `usage: search "query" [flags]`)
		fs.PrintDefaults()
	}

	args, err := cli.Parse(fs, os.Args[1:])
	if err != nil {
		os.Exit(cli.ExitUsage)
	}
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		fs.Usage()
		os.Exit(cli.ExitUsage)
	}

	req := search.Request{Query: query, Limit: *limit}
	if req.After, err = search.ParseDate(*after); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitUsage)
	}
	if req.Before, err = search.ParseDate(*before); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitUsage)
	}
	if *minSimilarity >= -1 {
		req.MinSimilarity = minSimilarity
	}

	cfg := cli.LoadConfig(*configPath)

	app := fx.New(
		cli.Infrastructure(cfg),
		embedding.FXModule,
		search.FXModule,
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, log logger.Logger, svc *search.Service) {
			cli.Run(lc, sd, log, func(ctx context.Context) error {
				hits, err := svc.Search(ctx, req)
				if err != nil {
					return err
				}
				printHits(os.Stdout, query, hits)
				return nil
			})
		}),
	)
	app.Run()
}
