// Package vectorstore defines the nearest-neighbor index the pipeline
// writes to and the chat engine queries. The index itself is an external
// managed service; implementations live in subpackages.
package vectorstore

import "context"

// Entry is the persisted unit in the vector index. The ID is derived
// deterministically from chunk identity, so re-ingesting the same chunk
// overwrites instead of duplicating.
type Entry struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Match is one query result.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]string
}

// IndexStats reports the current size of the index.
type IndexStats struct {
	TotalVectors uint32
}

// Store is the vector index capability.
type Store interface {
	// EnsureIndex creates the index with the given vector dimension if it
	// does not exist, and connects to it. Creation on the provider side is
	// asynchronous; implementations wait for the index to settle before
	// returning.
	EnsureIndex(ctx context.Context, dimension int) error

	// Upsert writes entries, overwriting any with the same id.
	Upsert(ctx context.Context, entries []Entry) error

	// Query returns the topK nearest entries to the vector.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Stats reports the current index size.
	Stats(ctx context.Context) (IndexStats, error)
}
