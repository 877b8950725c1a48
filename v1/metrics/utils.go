package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AddProcessed counts n files with the given outcome.
func (m *Metrics) AddProcessed(outcome string, n int) {
	if n <= 0 {
		return
	}
	m.photosProcessed.WithLabelValues(outcome).Add(float64(n))
}

// ObserveBatch records a flushed batch.
func (m *Metrics) ObserveBatch(start time.Time, size int, status string) {
	m.batchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	m.batchSize.WithLabelValues(status).Observe(float64(size))
}

// ObserveSearch records one search request and, on success, how many
// results it returned.
func (m *Metrics) ObserveSearch(start time.Time, results int, status string) {
	m.searchRequests.WithLabelValues(status).Inc()
	m.searchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if status == StatusOK {
		m.searchResults.WithLabelValues().Observe(float64(results))
	}
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}
