// Package embedding encodes images and text into a shared, L2-normalised
// vector space using a CLIP-style model served over HTTP.
//
// The inference service must expose an OpenAI-compatible embeddings route
// that also accepts images:
//
//	POST {endpoint}/embeddings
//	{"model": "ViT-L-14", "modality": "image", "input": ["data:image/jpeg;base64,..."]}
//
//	{"data": [{"index": 0, "embedding": [0.01, ...]}]}
//
// The Model (architecture, weights, dimension) is fixed when the Client is
// built. Image and text vectors from the same Client are directly comparable
// by cosine similarity; vectors from different models are not, which is why
// switching models goes through a dimension migration of the store.
//
// Usage:
//
//	client, err := embedding.NewClient(cfg)
//	vecs, err := client.EncodeImages(ctx, images)
//	q, err := client.EncodeText(ctx, "dog on a beach")
package embedding
