package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// InferenceProvider talks to an OpenAI-compatible embeddings endpoint that
// also accepts images, such as Infinity or a CLIP server.
type InferenceProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newInferenceProvider(cfg Config) (*InferenceProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("inference: missing endpoint")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	return &InferenceProvider{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Pretrained string   `json:"pretrained,omitempty"`
	Input      []string `json:"input"`
	Modality   Modality `json:"modality"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed posts inputs to {endpoint}/embeddings and returns the vectors
// ordered by the index the server reports. The weight set travels with the
// architecture name so a server hosting several checkpoints picks the right
// one.
func (p *InferenceProvider) Embed(ctx context.Context, model Model, modality Modality, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("inference: no inputs provided")
	}

	var parsed embeddingsResponse
	url := p.baseURL + "/embeddings"
	if err := p.postJSON(ctx, url, embeddingsRequest{
		Model:      model.Name(),
		Pretrained: model.Pretrained(),
		Input:      inputs,
		Modality:   modality,
	}, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(inputs) {
		return nil, fmt.Errorf("inference: expected %d embeddings, got %d", len(inputs), len(parsed.Data))
	}

	sort.SliceStable(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Close releases idle connections.
func (p *InferenceProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
