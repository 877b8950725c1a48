package embedding

import (
	"context"
	"fmt"
	"image"
)

// Client encodes images and text into the same normalised vector space.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	model        Model
	batchSize    int
	maxImageSide int
	provider     Provider
}

// NewClient validates cfg and builds a Client backed by the HTTP
// inference provider.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
	}

	return NewClientWithProvider(cfg, p), nil
}

// NewClientWithProvider builds a Client on top of an arbitrary Provider.
// cfg is assumed to be valid.
func NewClientWithProvider(cfg Config, p Provider) *Client {
	return &Client{
		model:        NewModel(cfg),
		batchSize:    cfg.BatchSize,
		maxImageSide: cfg.MaxImageSide,
		provider:     p,
	}
}

// Model returns the embedding space this client encodes into.
func (c *Client) Model() Model { return c.model }

// Dimension is shorthand for Model().Dimension().
func (c *Client) Dimension() int { return c.model.Dimension() }

// EncodeImages returns one unit vector per image, in order. Images are sent
// in requests of at most the configured batch size. Any failure fails the
// whole call with ErrEncoding.
func (c *Client) EncodeImages(ctx context.Context, images []image.Image) ([][]float32, error) {
	if len(images) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(images))
	for i, img := range images {
		uri, err := imageDataURI(img, c.maxImageSide)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrEncoding, i, err)
		}
		inputs[i] = uri
	}

	return c.encode(ctx, ModalityImage, inputs)
}

// EncodeText returns the unit vector for a free-text query.
func (c *Client) EncodeText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrEncoding)
	}
	vecs, err := c.encode(ctx, ModalityText, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *Client) encode(ctx context.Context, modality Modality, inputs []string) ([][]float32, error) {
	out := make([][]float32, 0, len(inputs))

	for start := 0; start < len(inputs); start += c.batchSize {
		end := min(start+c.batchSize, len(inputs))
		chunk := inputs[start:end]

		vecs, err := c.provider.Embed(ctx, c.model, modality, chunk)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		if len(vecs) != len(chunk) {
			return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrEncoding, len(chunk), len(vecs))
		}

		for i, v := range vecs {
			if len(v) != c.model.Dimension() {
				return nil, fmt.Errorf("%w: vector %d has dimension %d, model %s expects %d",
					ErrEncoding, start+i, len(v), c.model.Name(), c.model.Dimension())
			}
			if err := normalize(v); err != nil {
				return nil, fmt.Errorf("%w: vector %d: %v", ErrEncoding, start+i, err)
			}
			out = append(out, v)
		}
	}

	return out, nil
}

// Close releases the provider's resources.
func (c *Client) Close() error {
	if closer, ok := c.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
