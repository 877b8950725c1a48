package indexer

import (
	"go.uber.org/fx"

	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photostore"
	"github.com/mypictures/photoindex/v1/tracer"
)

// FXModule provides *Indexer wired to the photostore repository and the
// embedding client.
var FXModule = fx.Module("indexer",
	fx.Provide(NewIndexerWithDI),
)

// IndexerParams groups the dependencies of NewIndexerWithDI.
type IndexerParams struct {
	fx.In

	Config  Config
	Store   *photostore.Repository
	Encoder *embedding.Client
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Tracer  *tracer.Tracer
}

// NewIndexerWithDI adapts New to fx.
func NewIndexerWithDI(p IndexerParams) *Indexer {
	return New(p.Config, p.Store, p.Encoder, p.Logger, p.Metrics, p.Tracer)
}
