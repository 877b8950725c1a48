// Package photostore persists photo records and their embeddings in
// PostgreSQL with the pgvector extension.
//
// Records are keyed by absolute file path. UpsertBatch writes a whole batch
// in one transaction, Nearest ranks records by cosine distance, and
// ResizeEmbedding switches the store to a model of a different dimension.
package photostore
