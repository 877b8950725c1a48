package metrics

// DefaultMetricsAddress is used when serving is enabled without an address.
const DefaultMetricsAddress = ":9090"

// Config controls the Prometheus registry and its optional HTTP endpoint.
type Config struct {
	// Address is where /metrics is served. Empty disables serving; the
	// collectors still record so short-lived CLIs can log a summary.
	Address string `yaml:"address"`

	// EnableDefaultCollectors adds the Go runtime and process collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`

	// ServiceName is attached to every series as the "service" label.
	ServiceName string `yaml:"service_name"`
}
