package embedding

import "fmt"

// Model identifies the embedding space. It is built once per process and
// never changes; records indexed with one Model can only be searched with
// a query encoded by the same Model.
type Model struct {
	name       string
	pretrained string
	dimension  int
}

// NewModel returns the Model described by cfg.
func NewModel(cfg Config) Model {
	return Model{name: cfg.Model, pretrained: cfg.Pretrained, dimension: cfg.Dimension}
}

// Name is the architecture, e.g. ViT-L-14.
func (m Model) Name() string { return m.name }

// Pretrained is the weight set, e.g. laion2b_s32b_b82k.
func (m Model) Pretrained() string { return m.pretrained }

// Dimension is the vector length.
func (m Model) Dimension() int { return m.dimension }

func (m Model) String() string {
	if m.pretrained == "" {
		return fmt.Sprintf("%s (%d)", m.name, m.dimension)
	}
	return fmt.Sprintf("%s/%s (%d)", m.name, m.pretrained, m.dimension)
}
