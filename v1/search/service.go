// Package search answers natural-language queries against the photo index.
//
// A query is embedded with the text side of the model, the store returns the
// nearest records by cosine distance, and hits under the similarity cutoff
// are dropped. Searches run on a bounded pool so a burst of requests cannot
// exhaust database connections or the model server.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/tracer"
)

// Service runs searches. It is safe for concurrent use.
type Service struct {
	cfg     Config
	encoder TextEncoder
	engine  Engine
	slots   *semaphore.Weighted
	log     logger.Logger
	metrics *metrics.Metrics
	tracer  *tracer.Tracer
}

// NewService builds a Service. Unset Config fields take the package
// defaults.
func NewService(cfg Config, encoder TextEncoder, engine Engine, log logger.Logger, m *metrics.Metrics, tr *tracer.Tracer) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		cfg:     cfg,
		encoder: encoder,
		engine:  engine,
		slots:   semaphore.NewWeighted(int64(cfg.Workers)),
		log:     log,
		metrics: m,
		tracer:  tr,
	}
}

type outcome struct {
	hits []photo.Hit
	err  error
}

// Search returns the hits for req, best first. It waits for a free worker
// slot; if ctx ends first, or while the search runs, ctx.Err() is returned
// and no partial results.
func (s *Service) Search(ctx context.Context, req Request) ([]photo.Hit, error) {
	start := time.Now()
	ctx, span := s.tracer.StartSpan(ctx, "search.query")
	defer span.End()

	req, err := s.normalize(req)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}
	s.tracer.SetAttributes(span, map[string]interface{}{
		"search.limit":          req.Limit,
		"search.min_similarity": *req.MinSimilarity,
	})

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	done := make(chan outcome, 1)
	go func() {
		defer s.slots.Release(1)
		hits, err := s.run(ctx, req)
		done <- outcome{hits: hits, err: err}
	}()

	select {
	case <-ctx.Done():
		s.metrics.ObserveSearch(start, 0, metrics.StatusError)
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			s.tracer.RecordErrorOnSpan(span, out.err)
			s.metrics.ObserveSearch(start, 0, metrics.StatusError)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Error("search failed", out.err, map[string]interface{}{
				"query": req.Query,
			})
			return nil, ErrSearchFailed
		}

		s.metrics.ObserveSearch(start, len(out.hits), metrics.StatusOK)
		s.log.Debug("search complete", nil, map[string]interface{}{
			"query":       req.Query,
			"results":     len(out.hits),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return out.hits, nil
	}
}

func (s *Service) run(ctx context.Context, req Request) ([]photo.Hit, error) {
	vec, err := s.encoder.EncodeText(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	hits, err := s.engine.Nearest(ctx, photo.Query{
		Embedding: vec,
		Limit:     req.Limit,
		After:     req.After,
		Before:    req.Before,
	})
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}

	return FilterBySimilarity(hits, *req.MinSimilarity), nil
}

func (s *Service) normalize(req Request) (Request, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if req.Limit < 0 {
		return req, fmt.Errorf("%w: negative limit %d", ErrInvalidRequest, req.Limit)
	}
	if req.Limit == 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.MinSimilarity == nil {
		cutoff := s.cfg.MinSimilarity
		req.MinSimilarity = &cutoff
	}
	return req, nil
}
