package embedding

import (
	"context"
	"errors"
)

// ErrEncoding wraps every failure to produce embeddings.
var ErrEncoding = errors.New("encoding failure")

// Modality tells the inference service which tower of the model to use.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// Provider turns a batch of inputs into raw, unnormalised vectors, one per
// input and in input order. Image inputs are data URIs.
type Provider interface {
	Embed(ctx context.Context, model Model, modality Modality, inputs []string) ([][]float32, error)
}
