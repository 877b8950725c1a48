package embedding

import (
	"fmt"
	"time"
)

// Defaults for the joint image/text model.
const (
	DefaultModel        = "ViT-L-14"
	DefaultPretrained   = "laion2b_s32b_b82k"
	DefaultDimension    = 768
	DefaultBatchSize    = 32
	DefaultMaxImageSide = 448
	DefaultHTTPTimeout  = 120 * time.Second
)

// Config describes the inference service and the model it serves.
type Config struct {
	// Endpoint is the base URL of the OpenAI-compatible inference service.
	Endpoint string `yaml:"endpoint"`

	// APIKey is sent as a bearer token when set.
	APIKey string `yaml:"api_key"`

	Model      string `yaml:"model"`
	Pretrained string `yaml:"pretrained"`

	// Dimension is the vector length the model produces. Every response is
	// checked against it.
	Dimension int `yaml:"dimension"`

	// BatchSize caps how many inputs go into one request.
	BatchSize int `yaml:"batch_size"`

	// MaxImageSide bounds the longest edge of images sent for encoding.
	// The model works at a far lower resolution than camera output.
	MaxImageSide int `yaml:"max_image_side"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// DefaultConfig returns a Config with every default filled in except Endpoint.
func DefaultConfig() Config {
	return Config{
		Model:        DefaultModel,
		Pretrained:   DefaultPretrained,
		Dimension:    DefaultDimension,
		BatchSize:    DefaultBatchSize,
		MaxImageSide: DefaultMaxImageSide,
		HTTPTimeout:  DefaultHTTPTimeout,
	}
}

// Validate reports the first missing or out of range setting.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing endpoint")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding: missing model")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("embedding: dimension must be positive, got %d", c.Dimension)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("embedding: batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}
