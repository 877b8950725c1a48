// Package config assembles the settings of every component from defaults,
// an optional YAML file, a .env file and the process environment, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/indexer"
	"github.com/mypictures/photoindex/v1/logger"
	"github.com/mypictures/photoindex/v1/metrics"
	"github.com/mypictures/photoindex/v1/photostore"
	"github.com/mypictures/photoindex/v1/postgres"
	"github.com/mypictures/photoindex/v1/scanner"
	"github.com/mypictures/photoindex/v1/search"
	"github.com/mypictures/photoindex/v1/tracer"
)

const (
	// PathEnv names the YAML file read when Load is given no path.
	PathEnv = "PHOTOINDEX_CONFIG"

	// DotEnvFile is read from the working directory if present.
	DotEnvFile = ".env"

	DefaultServiceName = "photoindex"
	DefaultEndpoint    = "http://localhost:8000/v1"
)

// DefaultScanPaths are the photo libraries indexed out of the box.
var DefaultScanPaths = []string{
	"~/Data/Drive1/Pictures",
	"~/Data/Drive2/Photos",
}

// Config is the whole application configuration. Each section is the
// Config type of the package it configures.
type Config struct {
	ServiceName string `yaml:"service_name"`

	Logger    logger.Config    `yaml:"logger"`
	Postgres  postgres.Config  `yaml:"postgres"`
	Embedding embedding.Config `yaml:"embedding"`
	Indexer   indexer.Config   `yaml:"indexer"`
	Search    search.Config    `yaml:"search"`
	Metrics   metrics.Config   `yaml:"metrics"`
	Tracer    tracer.Config    `yaml:"tracer"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		ServiceName: DefaultServiceName,
		Logger: logger.Config{
			Level: logger.Info,
		},
		Postgres: postgres.Config{
			Connection: postgres.Connection{
				Host:    "localhost",
				Port:    "5432",
				User:    "postgres",
				DbName:  "mypictures",
				SSLMode: "disable",
			},
		},
		Embedding: func() embedding.Config {
			c := embedding.DefaultConfig()
			c.Endpoint = DefaultEndpoint
			return c
		}(),
		Indexer: indexer.Config{
			ScanPaths:    append([]string(nil), DefaultScanPaths...),
			BatchSize:    indexer.DefaultBatchSize,
			MaxImageSide: embedding.DefaultMaxImageSide,
			MaxPixels:    indexer.DefaultMaxPixels,
		},
		Search: search.DefaultConfig(),
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// PHOTOINDEX_CONFIG variable is consulted, and when that is empty too no
// file is read.
func Load(path string) (*Config, error) {
	return load(path, DotEnvFile)
}

func load(path, dotEnv string) (*Config, error) {
	if err := loadDotEnv(dotEnv); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports the variables of file that are not already set.
func loadDotEnv(file string) error {
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("config: load %s: %w", file, err)
	}
	return nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Postgres.Connection.Host, "DB_HOST")
	setString(&cfg.Postgres.Connection.Port, "DB_PORT")
	setString(&cfg.Postgres.Connection.DbName, "DB_NAME")
	setString(&cfg.Postgres.Connection.User, "DB_USER")
	setString(&cfg.Postgres.Connection.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.Connection.SSLMode, "DB_SSLMODE")

	if v, ok := lookup("SCAN_PATHS"); ok {
		cfg.Indexer.ScanPaths = splitList(v)
	}

	setString(&cfg.Embedding.Endpoint, "EMBEDDING_ENDPOINT")
	setString(&cfg.Embedding.APIKey, "EMBEDDING_API_KEY")
	setString(&cfg.Embedding.Model, "CLIP_MODEL")
	setString(&cfg.Embedding.Pretrained, "CLIP_PRETRAINED")

	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.Metrics.Address, "METRICS_ADDRESS")

	if err := setInt(&cfg.Indexer.BatchSize, "BATCH_SIZE"); err != nil {
		return err
	}
	if err := setInt(&cfg.Embedding.Dimension, "EMBEDDING_DIM"); err != nil {
		return err
	}
	if err := setInt(&cfg.Search.Workers, "SEARCH_WORKERS"); err != nil {
		return err
	}
	if v, ok := lookup("TRACING_EXPORT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: TRACING_EXPORT: %w", err)
		}
		cfg.Tracer.EnableExport = b
	}
	return nil
}

// finish fills derived fields, expands scan paths and validates.
func (c *Config) finish() error {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.Logger.ServiceName == "" {
		c.Logger.ServiceName = c.ServiceName
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.ServiceName
	}
	if c.Tracer.ServiceName == "" {
		c.Tracer.ServiceName = c.ServiceName
	}

	// One batch is one encoder call.
	c.Embedding.BatchSize = c.Indexer.BatchSize
	if c.Indexer.MaxImageSide < c.Embedding.MaxImageSide {
		c.Indexer.MaxImageSide = c.Embedding.MaxImageSide
	}

	paths := make([]string, 0, len(c.Indexer.ScanPaths))
	for _, p := range c.Indexer.ScanPaths {
		resolved, err := scanner.ResolveRoot(p)
		if err != nil {
			return fmt.Errorf("config: scan path %q: %w", p, err)
		}
		paths = append(paths, resolved)
	}
	c.Indexer.ScanPaths = paths

	return c.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Postgres.Connection.Host == "" {
		return errors.New("config: database host is empty")
	}
	if c.Postgres.Connection.DbName == "" {
		return errors.New("config: database name is empty")
	}
	if c.Indexer.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be positive, got %d", c.Indexer.BatchSize)
	}
	if d := c.Embedding.Dimension; d <= 0 || d > photostore.MaxIndexedDimension {
		return fmt.Errorf("config: embedding dimension must be in 1..%d, got %d", photostore.MaxIndexedDimension, d)
	}
	if c.Search.MinSimilarity < -1 || c.Search.MinSimilarity > 1 {
		return fmt.Errorf("config: min similarity must be in -1..1, got %g", c.Search.MinSimilarity)
	}
	if err := c.Embedding.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
