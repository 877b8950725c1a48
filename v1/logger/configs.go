package logger

// Supported log levels.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls the zap logger built by NewLoggerClient.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else falls back to info.
	Level string `yaml:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name"`

	// Console switches from JSON to the human readable console encoder.
	// The CLIs turn this on when attached to a terminal.
	Console bool `yaml:"console"`
}
