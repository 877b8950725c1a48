package tracer

// Config controls the OpenTelemetry tracer provider.
type Config struct {
	ServiceName string `yaml:"service_name"`
	AppEnv      string `yaml:"app_env"`

	// EnableExport sends spans to the OTLP HTTP endpoint configured through
	// the standard OTEL_EXPORTER_OTLP_* environment variables. Without it
	// spans are created but dropped.
	EnableExport bool `yaml:"enable_export"`
}
