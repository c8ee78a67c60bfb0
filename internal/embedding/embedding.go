// Package embedding wraps the OpenAI embedding endpoint behind small
// interfaces the pipeline and chat engine depend on.
package embedding

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder maps chunk texts to fixed-dimension vectors. Satisfied by
// langchaingo's EmbedderImpl.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryEmbedder maps a single query to a vector, used at retrieval time.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewOpenAI creates an embedder for the given OpenAI embedding model.
// The chunk text is passed through verbatim; truncation, if any, is the
// provider's concern.
func NewOpenAI(apiKey, model string) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, err
	}
	return newEmbedder(llm)
}

// newEmbedder wraps a provider client without text rewriting. Newline
// stripping is on by default and would alter the chunk text before the
// provider call.
func newEmbedder(client embeddings.EmbedderClient) (*embeddings.EmbedderImpl, error) {
	return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
}
