package search

import (
	"go.uber.org/fx"

	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photostore"
	"github.com/mypictures/photoindex/v1/tracer"
)

// FXModule provides *Service backed by the embedding client and the
// photostore repository.
var FXModule = fx.Module("search",
	fx.Provide(NewServiceWithDI),
)

// ServiceParams groups the dependencies of NewServiceWithDI.
type ServiceParams struct {
	fx.In

	Config  Config
	Encoder *embedding.Client
	Store   *photostore.Repository
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Tracer  *tracer.Tracer
}

func NewServiceWithDI(p ServiceParams) *Service {
	return NewService(p.Config, p.Encoder, p.Store, p.Logger, p.Metrics, p.Tracer)
}
