package indexer

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/postgres"
	"github.com/mypictures/photoindex/v1/tracer"
)

// Writer accumulates pending records and, once a batch is full, encodes all
// of its images in one call and upserts the batch in one transaction.
//
// A batch that fails to encode or to write is dropped and its files are
// counted as failed; later batches are unaffected. Losing the database
// connection or cancelling ctx also counts the batch as failed and is
// returned to the caller.
type Writer struct {
	store     Store
	encoder   ImageEncoder
	batchSize int
	log       logger.Logger
	metrics   *metrics.Metrics
	tracer    *tracer.Tracer
	now       func() time.Time

	pending []Pending
	written int
	failed  int
}

// NewWriter returns a Writer that flushes every batchSize records.
func NewWriter(store Store, encoder ImageEncoder, batchSize int, log logger.Logger, m *metrics.Metrics, tr *tracer.Tracer) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Writer{
		store:     store,
		encoder:   encoder,
		batchSize: batchSize,
		log:       log,
		metrics:   m,
		tracer:    tr,
		now:       time.Now,
		pending:   make([]Pending, 0, batchSize),
	}
}

// Add queues p and flushes when the batch is full.
func (w *Writer) Add(ctx context.Context, p Pending) error {
	w.pending = append(w.pending, p)
	if len(w.pending) >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

// Len returns the number of queued records.
func (w *Writer) Len() int { return len(w.pending) }

// Written returns the number of records committed so far.
func (w *Writer) Written() int { return w.written }

// Failed returns the number of records dropped with a failed batch,
// including one aborted by a run-fatal error.
func (w *Writer) Failed() int { return w.failed }

// Flush encodes and commits whatever is queued. The queue is empty
// afterwards whatever the outcome.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	batch := w.pending
	w.pending = make([]Pending, 0, w.batchSize)

	start := time.Now()
	ctx, span := w.tracer.StartSpan(ctx, "indexer.flush")
	defer span.End()
	w.tracer.SetAttributes(span, map[string]interface{}{"batch.size": len(batch)})

	err := w.flush(ctx, batch)
	if err == nil {
		w.written += len(batch)
		w.metrics.ObserveBatch(start, len(batch), metrics.StatusOK)
		w.log.Info("batch committed", nil, map[string]interface{}{
			"size":    len(batch),
			"written": w.written,
		})
		return nil
	}

	w.tracer.RecordErrorOnSpan(span, err)
	w.metrics.ObserveBatch(start, len(batch), metrics.StatusError)

	w.failed += len(batch)
	if isRunFatal(ctx, err) {
		return err
	}

	w.log.Error("batch dropped", err, map[string]interface{}{
		"size":  len(batch),
		"first": batch[0].Record.FilePath,
	})
	return nil
}

func (w *Writer) flush(ctx context.Context, batch []Pending) error {
	images := make([]image.Image, len(batch))
	for i := range batch {
		images[i] = batch[i].Image
	}

	vectors, err := w.encoder.EncodeImages(ctx, images)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return errors.New("encoder returned a different number of vectors than images")
	}

	indexedAt := w.now().UTC()
	records := make([]photo.Record, len(batch))
	for i := range batch {
		records[i] = batch[i].Record
		records[i].Embedding = pgvector.NewVector(vectors[i])
		records[i].DateIndexed = indexedAt
	}

	return w.store.UpsertBatch(ctx, records)
}

// isRunFatal separates failures that end the run from those that only
// cost the current batch.
func isRunFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, postgres.ErrConnectivity)
}
