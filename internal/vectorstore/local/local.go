// Package local implements the vector store on chromem-go, for
// credential-free dry runs and local development.
package local

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"drive-rag/internal/models"
	"drive-rag/internal/vectorstore"
)

// Store is an in-process vector store. With an empty path it is purely
// in-memory; otherwise it persists under the given directory.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// New creates a local store with the named collection.
func New(path, collection string) (*Store, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("create local store: %w", err)
		}
	}
	return &Store{db: db, name: collection}, nil
}

// EnsureIndex creates or opens the collection. The dimension is implied
// by the first stored vector; chromem does not pre-declare it.
func (s *Store) EnsureIndex(ctx context.Context, dimension int) error {
	c, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("create/get collection: %w", err)
	}
	s.collection = c
	return nil
}

// Upsert writes entries; same-id entries overwrite.
func (s *Store) Upsert(ctx context.Context, entries []vectorstore.Entry) error {
	if s.collection == nil {
		return fmt.Errorf("local store: collection not initialised")
	}
	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, chromem.Document{
			ID:        e.ID,
			Content:   e.Metadata[models.MetaText],
			Metadata:  e.Metadata,
			Embedding: e.Values,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Query returns the topK nearest entries, clamped to the collection size.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("local store: collection not initialised")
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	matches := make([]vectorstore.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, vectorstore.Match{
			ID:       r.ID,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		})
	}
	return matches, nil
}

// Stats reports the collection size.
func (s *Store) Stats(ctx context.Context) (vectorstore.IndexStats, error) {
	if s.collection == nil {
		return vectorstore.IndexStats{}, fmt.Errorf("local store: collection not initialised")
	}
	return vectorstore.IndexStats{TotalVectors: uint32(s.collection.Count())}, nil
}
