package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photo"
)

type stubEncoder struct {
	err error
}

func (e stubEncoder) EncodeText(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type stubEngine struct {
	mu      sync.Mutex
	queries []photo.Query
	hits    []photo.Hit
	err     error
	// block, when set, holds Nearest until it is closed or ctx ends.
	block    chan struct{}
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (e *stubEngine) Nearest(ctx context.Context, q photo.Query) ([]photo.Hit, error) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	e.mu.Lock()
	e.queries = append(e.queries, q)
	e.mu.Unlock()

	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return e.hits, e.err
}

func quietLogger(t *testing.T) logger.Logger {
	ctrl := gomock.NewController(t)
	l := logger.NewMockLogger(ctrl)
	l.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return l
}

func newService(t *testing.T, cfg Config, enc TextEncoder, eng Engine) *Service {
	return NewService(cfg, enc, eng, quietLogger(t), metrics.NewMetrics(metrics.Config{}), nil)
}

func scored(path string, s float64) photo.Hit {
	return photo.Hit{FilePath: path, FileName: path, Similarity: s}
}

func TestSearchAppliesDefaultsAndFilters(t *testing.T) {
	eng := &stubEngine{hits: []photo.Hit{scored("a", 0.31), scored("b", 0.2), scored("c", 0.19)}}
	svc := newService(t, DefaultConfig(), stubEncoder{}, eng)

	hits, err := svc.Search(context.Background(), Request{Query: "  beach at sunset "})
	require.NoError(t, err)

	assert.Equal(t, []photo.Hit{scored("a", 0.31), scored("b", 0.2)}, hits)
	require.Len(t, eng.queries, 1)
	assert.Equal(t, DefaultLimit, eng.queries[0].Limit)
	assert.Equal(t, []float32{float32(len("beach at sunset")), 1}, eng.queries[0].Embedding)
}

func TestSearchPassesBoundsAndExplicitCutoff(t *testing.T) {
	eng := &stubEngine{hits: []photo.Hit{scored("a", 0.05)}}
	svc := newService(t, DefaultConfig(), stubEncoder{}, eng)

	after, err := ParseDate("2023-06-01")
	require.NoError(t, err)
	before, err := ParseDate("2023-06-30")
	require.NoError(t, err)
	zero := 0.0

	hits, err := svc.Search(context.Background(), Request{
		Query:         "dog",
		Limit:         5,
		After:         after,
		Before:        before,
		MinSimilarity: &zero,
	})
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	q := eng.queries[0]
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, after, q.After)
	assert.Equal(t, before, q.Before)
}

func TestSearchRejectsInvalidRequests(t *testing.T) {
	eng := &stubEngine{}
	svc := newService(t, Config{}, stubEncoder{}, eng)

	_, err := svc.Search(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Search(context.Background(), Request{Query: "cat", Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, eng.queries)
}

func TestSearchHidesFailureDetails(t *testing.T) {
	tests := []struct {
		name string
		enc  stubEncoder
		eng  *stubEngine
	}{
		{name: "encoder", enc: stubEncoder{err: errors.New("model offline")}, eng: &stubEngine{}},
		{name: "store", enc: stubEncoder{}, eng: &stubEngine{err: errors.New("relation does not exist")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, DefaultConfig(), tt.enc, tt.eng)
			hits, err := svc.Search(context.Background(), Request{Query: "cat"})
			assert.Nil(t, hits)
			assert.Equal(t, ErrSearchFailed, err)
		})
	}
}

func TestSearchHonoursCancellation(t *testing.T) {
	eng := &stubEngine{block: make(chan struct{})}
	svc := newService(t, DefaultConfig(), stubEncoder{}, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	hits, err := svc.Search(ctx, Request{Query: "cat"})
	assert.Nil(t, hits)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchBoundsConcurrency(t *testing.T) {
	eng := &stubEngine{block: make(chan struct{}), hits: []photo.Hit{scored("a", 0.9)}}
	svc := newService(t, Config{Workers: 2}, stubEncoder{}, eng)

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Search(context.Background(), Request{Query: "cat"})
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return eng.inFlight.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(eng.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(2), eng.peak.Load())
	assert.Len(t, eng.queries, 6)
}
