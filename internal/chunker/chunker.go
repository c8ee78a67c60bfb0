// Package chunker splits documents into overlapping token windows
// suitable for embedding.
package chunker

import (
	"strconv"

	"drive-rag/internal/models"
)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = 1024

// DefaultChunkOverlap is the default number of overlapping tokens.
const DefaultChunkOverlap = 200

// Tokenizer converts text to token ids and back. Windows are cut over
// token ids so a chunk boundary never splits a token.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Splitter cuts documents into fixed-size token windows with overlap.
// Every chunk except the last has exactly chunkSize tokens; consecutive
// chunks share the trailing overlap tokens of their predecessor.
type Splitter struct {
	tok       Tokenizer
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter over the given tokenizer.
func New(tok Tokenizer, opts ...Option) *Splitter {
	s := &Splitter{
		tok:       tok,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Invariant: overlap < chunk size.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split cuts one document into chunks. Each chunk carries the parent
// document's metadata plus its sequence marker.
func (s *Splitter) Split(doc models.Document) []models.Chunk {
	ids := s.tok.Encode(doc.Text)
	if len(ids) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	chunks := make([]models.Chunk, 0, len(ids)/step+1)

	for start := 0; start < len(ids); start += step {
		end := start + s.chunkSize
		if end > len(ids) {
			end = len(ids)
		}

		meta := make(map[string]string, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta[models.MetaChunk] = strconv.Itoa(len(chunks))

		chunks = append(chunks, models.Chunk{
			Text:     s.tok.Decode(ids[start:end]),
			Index:    len(chunks),
			Tokens:   end - start,
			Metadata: meta,
		})

		// A window that reaches the end is the last chunk; stepping again
		// would emit a pure-overlap tail.
		if end == len(ids) {
			break
		}
	}

	return chunks
}
