package indexer

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/postgres"
)

type shortEncoder struct{}

func (shortEncoder) EncodeImages(context.Context, []image.Image) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

func pending(path string) Pending {
	return Pending{
		Record: photo.Record{FilePath: path, FileName: path},
		Image:  image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
}

func TestWriterFlushesWhenFull(t *testing.T) {
	store := newMemStore()
	w := NewWriter(store, &fakeEncoder{}, 2, quietLogger(t), metrics.NewMetrics(metrics.Config{}), nil)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	w.now = func() time.Time { return fixed }

	ctx := context.Background()
	require.NoError(t, w.Add(ctx, pending("/a")))
	assert.Equal(t, 1, w.Len())
	assert.Empty(t, store.batches)

	require.NoError(t, w.Add(ctx, pending("/b")))
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, [][]string{{"a", "b"}}, store.batches)

	require.NoError(t, w.Add(ctx, pending("/c")))
	require.NoError(t, w.Flush(ctx))
	require.NoError(t, w.Flush(ctx), "flushing an empty writer is a no-op")

	assert.Equal(t, 3, w.Written())
	assert.Equal(t, 0, w.Failed())
	assert.Equal(t, time.UTC, store.records["/c"].DateIndexed.Location())
	assert.True(t, store.records["/c"].DateIndexed.Equal(fixed))
}

func TestWriterDropsBatchOnVectorMismatch(t *testing.T) {
	store := newMemStore()
	w := NewWriter(store, shortEncoder{}, 3, quietLogger(t), metrics.NewMetrics(metrics.Config{}), nil)

	ctx := context.Background()
	require.NoError(t, w.Add(ctx, pending("/a")))
	require.NoError(t, w.Add(ctx, pending("/b")))
	require.NoError(t, w.Flush(ctx))

	assert.Equal(t, 0, w.Written())
	assert.Equal(t, 2, w.Failed())
	assert.Empty(t, store.records)
}

func TestNewWriterDefaultsBatchSize(t *testing.T) {
	w := NewWriter(newMemStore(), &fakeEncoder{}, 0, quietLogger(t), metrics.NewMetrics(metrics.Config{}), nil)
	assert.Equal(t, DefaultBatchSize, w.batchSize)
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "JPEG", formatName("jpeg", "/x/a.jpg"))
	assert.Equal(t, "HEIC", formatName("", "/x/a.heic"))
}

func TestWriterCountsBatchLostToConnectivity(t *testing.T) {
	store := newMemStore()
	store.upsertErrs = []error{postgres.ErrConnectivity}
	w := NewWriter(store, &fakeEncoder{}, 4, quietLogger(t), metrics.NewMetrics(metrics.Config{}), nil)

	ctx := context.Background()
	require.NoError(t, w.Add(ctx, pending("/a")))
	require.NoError(t, w.Add(ctx, pending("/b")))

	err := w.Flush(ctx)
	assert.ErrorIs(t, err, postgres.ErrConnectivity)
	assert.Equal(t, 2, w.Failed())
	assert.Equal(t, 0, w.Len())
}
