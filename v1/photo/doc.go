// Package photo defines the records, metadata and search types shared by
// the indexer, the store and the search service.
package photo
