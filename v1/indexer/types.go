package indexer

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/mypictures/photoindex/v1/photo"
)

// ErrFileDecode marks a file that could not be opened or decoded as an image.
// The file is counted as an error and the run continues.
var ErrFileDecode = errors.New("file decode failure")

// Store is the persistence the indexer needs.
type Store interface {
	LoadKnown(ctx context.Context) (paths []string, hashes []string, err error)
	UpsertBatch(ctx context.Context, records []photo.Record) error
}

// ImageEncoder turns decoded images into embeddings, one per image.
type ImageEncoder interface {
	EncodeImages(ctx context.Context, images []image.Image) ([][]float32, error)
}

// Pending is a record waiting for its embedding.
type Pending struct {
	Record photo.Record
	Image  image.Image
}

// Report summarises an index run.
type Report struct {
	// Found is the number of candidate files the scan returned.
	Found int
	// Skipped counts files whose path was already indexed.
	Skipped int
	// New counts records committed by this run.
	New int
	// Duplicates counts files whose content was already indexed or seen
	// earlier in the run.
	Duplicates int
	// Errors counts files that could not be hashed, decoded, encoded or
	// written. On an aborted run it includes the batch in flight; files
	// the run never reached are in none of the counts.
	Errors int

	Duration time.Duration
}

// Fields renders the report for structured logging.
func (r Report) Fields() map[string]interface{} {
	return map[string]interface{}{
		"found":       r.Found,
		"skipped":     r.Skipped,
		"new":         r.New,
		"duplicates":  r.Duplicates,
		"errors":      r.Errors,
		"duration_ms": r.Duration.Milliseconds(),
	}
}
