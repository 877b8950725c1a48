package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for photos_processed_total.
const (
	OutcomeNew       = "new"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

// Status labels for batches and searches.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics owns an isolated registry with the indexing and search
// collectors. Server is nil when no address is configured.
type Metrics struct {
	Server   *http.Server
	Registry *prometheus.Registry

	photosProcessed *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchSize       *prometheus.HistogramVec
	searchRequests  *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	searchResults   *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)
	if cfg.Namespace != "" {
		wrapped = prometheus.WrapRegistererWithPrefix(cfg.Namespace+"_", wrapped)
	}

	m := &Metrics{Registry: registry}

	m.photosProcessed = createCounterVec("photos_processed_total",
		"Files handled by index runs, by outcome", []string{"outcome"})
	m.batchDuration = createHistogramVec("index_batch_duration_seconds",
		"Time to encode and commit one batch", []string{"status"},
		prometheus.ExponentialBuckets(0.25, 2, 10))
	m.batchSize = createHistogramVec("index_batch_size",
		"Records per flushed batch", []string{"status"},
		prometheus.LinearBuckets(4, 4, 16))
	m.searchRequests = createCounterVec("search_requests_total",
		"Search requests, by status", []string{"status"})
	m.searchDuration = createHistogramVec("search_duration_seconds",
		"End to end search latency including text encoding", []string{"status"},
		prometheus.DefBuckets)
	m.searchResults = createHistogramVec("search_results",
		"Results returned after similarity filtering", nil,
		[]float64{0, 1, 5, 10, 20, 50, 100})

	wrapped.MustRegister(
		m.photosProcessed,
		m.batchDuration,
		m.batchSize,
		m.searchRequests,
		m.searchDuration,
		m.searchResults,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.Server = &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		}
	}

	return m
}
