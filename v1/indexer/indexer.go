// Package indexer runs the index pipeline: scan, deduplicate, decode,
// extract metadata, then encode and upsert in batches.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mypictures/photoindex/v1/dedup"
	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/scanner"
	"github.com/mypictures/photoindex/v1/tracer"
)

// Indexer brings the store up to date with the files under the scan roots.
// Runs are sequential; one Indexer must not run twice concurrently.
type Indexer struct {
	cfg     Config
	store   Store
	encoder ImageEncoder
	scanner *scanner.Scanner
	log     logger.Logger
	metrics *metrics.Metrics
	tracer  *tracer.Tracer
}

// New builds an Indexer.
func New(cfg Config, store Store, encoder ImageEncoder, log logger.Logger, m *metrics.Metrics, tr *tracer.Tracer) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxImageSide <= 0 {
		cfg.MaxImageSide = embedding.DefaultMaxImageSide
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	return &Indexer{
		cfg:     cfg,
		store:   store,
		encoder: encoder,
		scanner: scanner.New(cfg.Extensions, log),
		log:     log,
		metrics: m,
		tracer:  tr,
	}
}

// Run indexes every new file under roots, or under the configured scan
// paths when roots is empty. It returns the report so far together with an
// error when the store becomes unreachable or ctx is cancelled; per-file
// and per-batch failures are only counted.
//
// Cancellation is checked between files; a batch in flight is allowed to
// finish or fail on its own.
func (ix *Indexer) Run(ctx context.Context, roots []string) (Report, error) {
	started := time.Now()
	var report Report

	ctx, span := ix.tracer.StartSpan(ctx, "indexer.run")
	defer span.End()

	if len(roots) == 0 {
		roots = ix.cfg.ScanPaths
	}
	if len(roots) == 0 {
		return report, errors.New("no scan paths configured")
	}

	paths, hashes, err := ix.store.LoadKnown(ctx)
	if err != nil {
		ix.tracer.RecordErrorOnSpan(span, err)
		return report, fmt.Errorf("load indexed photos: %w", err)
	}
	known := dedup.New(paths, hashes)
	ix.log.Info("loaded index state", nil, map[string]interface{}{
		"paths":  len(paths),
		"hashes": len(hashes),
	})

	files, err := ix.scanner.Scan(ctx, roots)
	if err != nil {
		return report, fmt.Errorf("scan: %w", err)
	}
	report.Found = len(files)

	writer := NewWriter(ix.store, ix.encoder, ix.cfg.BatchSize, ix.log, ix.metrics, ix.tracer)

	finish := func(runErr error) (Report, error) {
		report.New = writer.Written()
		report.Errors += writer.Failed()
		report.Duration = time.Since(started)

		ix.metrics.AddProcessed(metrics.OutcomeNew, report.New)
		ix.metrics.AddProcessed(metrics.OutcomeDuplicate, report.Duplicates)
		ix.metrics.AddProcessed(metrics.OutcomeSkipped, report.Skipped)
		ix.metrics.AddProcessed(metrics.OutcomeError, report.Errors)
		ix.tracer.SetAttributes(span, report.Fields())

		if runErr != nil {
			ix.tracer.RecordErrorOnSpan(span, runErr)
			ix.log.Error("index run aborted", runErr, report.Fields())
			return report, runErr
		}
		ix.log.Info("index run complete", nil, report.Fields())
		return report, nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		if !known.IsNewPath(path) {
			report.Skipped++
			continue
		}

		hash, err := dedup.HashFile(path)
		if err != nil {
			report.Errors++
			ix.log.Warn("cannot hash file", err, map[string]interface{}{"path": path})
			continue
		}
		if !known.IsNewContent(hash) {
			report.Duplicates++
			ix.log.Debug("duplicate content", nil, map[string]interface{}{"path": path, "hash": hash})
			continue
		}
		known.Accept(hash)

		file, err := loadFile(path, hash, ix.cfg.MaxImageSide, ix.cfg.MaxPixels)
		if err != nil {
			report.Errors++
			ix.log.Warn("cannot decode file", err, map[string]interface{}{"path": path})
			continue
		}
		if file.metaErr != nil {
			ix.log.Debug("no usable exif", file.metaErr, map[string]interface{}{"path": path})
		}

		if err := writer.Add(ctx, Pending{Record: file.record, Image: file.image}); err != nil {
			return finish(err)
		}
	}

	if err := writer.Flush(ctx); err != nil {
		return finish(err)
	}
	return finish(nil)
}
