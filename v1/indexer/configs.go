package indexer

// Config controls an index run.
type Config struct {
	// ScanPaths are the roots walked when Run is given none.
	ScanPaths []string `yaml:"scan_paths"`

	// Extensions restricts which files are considered. Empty means
	// scanner.DefaultExtensions.
	Extensions []string `yaml:"extensions"`

	// BatchSize is how many images are encoded and committed together.
	BatchSize int `yaml:"batch_size"`

	// MaxImageSide bounds the size of decoded images held in a pending
	// batch. It should not be smaller than what the encoder sends.
	MaxImageSide int `yaml:"max_image_side"`

	// MaxPixels rejects images whose header declares more pixels than this
	// before any bitmap is allocated.
	MaxPixels int64 `yaml:"max_pixels"`
}

const (
	// DefaultBatchSize is used when Config.BatchSize is not positive.
	DefaultBatchSize = 32

	// DefaultMaxPixels admits every current camera sensor, 100 MP medium
	// format included.
	DefaultMaxPixels int64 = 150_000_000
)
