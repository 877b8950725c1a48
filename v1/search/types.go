package search

import (
	"context"
	"errors"
	"time"

	"github.com/mypictures/photoindex/v1/photo"
)

var (
	// ErrSearchFailed is the only error callers see when encoding the query
	// or reading the store fails. Details go to the log.
	ErrSearchFailed = errors.New("search failed")

	// ErrInvalidRequest rejects a request before any work is done.
	ErrInvalidRequest = errors.New("invalid search request")
)

// TextEncoder embeds a query into the shared image/text space.
type TextEncoder interface {
	EncodeText(ctx context.Context, text string) ([]float32, error)
}

// Engine answers nearest neighbour queries.
type Engine interface {
	Nearest(ctx context.Context, q photo.Query) ([]photo.Hit, error)
}

// Request is one natural-language search.
type Request struct {
	Query string

	// Limit is the number of nearest records fetched before filtering.
	// Zero means Config.DefaultLimit.
	Limit int

	// After and Before bound date_taken, both inclusive.
	After  *time.Time
	Before *time.Time

	// MinSimilarity drops hits scoring below it. Nil means
	// Config.MinSimilarity.
	MinSimilarity *float64
}
