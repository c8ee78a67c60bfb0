// Package pinecone implements the vector store on Pinecone serverless.
package pinecone

import (
	"context"
	"fmt"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"drive-rag/internal/vectorstore"
)

const (
	cloudRegion = "us-east-1"

	// Index creation is asynchronous on the provider side; wait this long
	// before issuing the first write to a freshly created index.
	defaultSettleWait = 10 * time.Second
)

// Store is a Pinecone-backed vector store.
type Store struct {
	client     *pinecone.Client
	indexName  string
	settleWait time.Duration
	conn       *pinecone.IndexConnection
	log        zerolog.Logger
}

// New creates a Pinecone store for the named index. The index is not
// touched until EnsureIndex is called.
func New(apiKey, indexName string, log zerolog.Logger) (*Store, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone client: %w", err)
	}
	return &Store{
		client:     client,
		indexName:  indexName,
		settleWait: defaultSettleWait,
		log:        log,
	}, nil
}

// EnsureIndex creates the serverless index (cosine metric) if absent,
// waits for it to settle, and opens a connection to its host.
func (s *Store) EnsureIndex(ctx context.Context, dimension int) error {
	indexes, err := s.client.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	exists := false
	for _, idx := range indexes {
		if idx.Name == s.indexName {
			exists = true
			break
		}
	}

	if !exists {
		s.log.Info().Str("index", s.indexName).Int("dimension", dimension).Msg("Creating new index")
		dim := int32(dimension)
		metric := pinecone.Cosine
		_, err := s.client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
			Name:      s.indexName,
			Dimension: &dim,
			Metric:    &metric,
			Cloud:     pinecone.Aws,
			Region:    cloudRegion,
		})
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.settleWait):
		}
	} else {
		s.log.Info().Str("index", s.indexName).Msg("Using existing index")
	}

	desc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return fmt.Errorf("describe index: %w", err)
	}

	conn, err := s.client.Index(pinecone.NewIndexConnParams{Host: desc.Host})
	if err != nil {
		return fmt.Errorf("connect to index: %w", err)
	}
	s.conn = conn

	if stats, err := conn.DescribeIndexStats(ctx); err == nil {
		s.log.Info().Uint32("vectors", stats.TotalVectorCount).Msg("Current vectors in index")
	}

	return nil
}

// Upsert writes entries to the index, overwriting entries with the same id.
func (s *Store) Upsert(ctx context.Context, entries []vectorstore.Entry) error {
	if s.conn == nil {
		return fmt.Errorf("pinecone: index connection not initialised")
	}
	if len(entries) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, 0, len(entries))
	for _, e := range entries {
		md, err := toMetadata(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", e.ID, err)
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:       e.ID,
			Values:   &e.Values,
			Metadata: md,
		})
	}

	if _, err := s.conn.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

// Query returns the topK nearest entries with their metadata.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("pinecone: index connection not initialised")
	}

	resp, err := s.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	matches := make([]vectorstore.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m.Vector == nil {
			continue
		}
		matches = append(matches, vectorstore.Match{
			ID:       m.Vector.Id,
			Score:    m.Score,
			Metadata: fromMetadata(m.Vector.Metadata),
		})
	}
	return matches, nil
}

// Stats reports the total vector count.
func (s *Store) Stats(ctx context.Context) (vectorstore.IndexStats, error) {
	if s.conn == nil {
		return vectorstore.IndexStats{}, fmt.Errorf("pinecone: index connection not initialised")
	}
	stats, err := s.conn.DescribeIndexStats(ctx)
	if err != nil {
		return vectorstore.IndexStats{}, fmt.Errorf("describe index stats: %w", err)
	}
	return vectorstore.IndexStats{TotalVectors: stats.TotalVectorCount}, nil
}

func toMetadata(meta map[string]string) (*pinecone.Metadata, error) {
	fields := make(map[string]any, len(meta))
	for k, v := range meta {
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

func fromMetadata(md *pinecone.Metadata) map[string]string {
	if md == nil {
		return nil
	}
	out := make(map[string]string)
	for k, v := range md.AsMap() {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
