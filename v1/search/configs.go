package search

// Defaults applied when Config or Request leave a field unset.
const (
	DefaultLimit         = 20
	DefaultMinSimilarity = 0.2
	DefaultWorkers       = 4
)

// Config holds service-wide search settings.
type Config struct {
	// DefaultLimit is the result count used when a request gives none.
	DefaultLimit int `yaml:"default_limit"`

	// MinSimilarity is the default post-query similarity cutoff.
	MinSimilarity float64 `yaml:"min_similarity"`

	// Workers bounds how many searches run at the same time. Further
	// requests wait for a free slot or for their context to end.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the settings used by the command line tools.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:  DefaultLimit,
		MinSimilarity: DefaultMinSimilarity,
		Workers:       DefaultWorkers,
	}
}

func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}
