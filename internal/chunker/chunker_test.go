package chunker

import (
	"strconv"
	"strings"
	"testing"

	"drive-rag/internal/models"
)

// wordTokenizer treats each whitespace-separated word as one token.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) []int {
	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i := range words {
		ids[i] = i
	}
	return ids
}

func (wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = "w" + strconv.Itoa(id)
	}
	return strings.Join(words, " ")
}

func doc(tokens int) models.Document {
	return models.Document{
		Text:     strings.Repeat("x ", tokens),
		Metadata: map[string]string{models.MetaSource: "gdrive:f1", models.MetaSegment: "0"},
	}
}

func TestSplitWindowArithmetic(t *testing.T) {
	s := New(wordTokenizer{}, WithChunkSize(1024), WithOverlap(200))

	chunks := s.Split(doc(2500))

	// Windows advance by 824 tokens: starts at 0, 824, 1648, 2472.
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if c.Tokens != 1024 {
			t.Errorf("chunk %d has %d tokens, want 1024", i, c.Tokens)
		}
	}
	last := chunks[len(chunks)-1]
	if last.Tokens != 2500-2472 {
		t.Errorf("last chunk has %d tokens, want %d", last.Tokens, 2500-2472)
	}
	if last.Text == "" {
		t.Error("last chunk must not be empty")
	}
}

func TestSplitShortDocumentSingleChunk(t *testing.T) {
	s := New(wordTokenizer{}, WithChunkSize(1024), WithOverlap(200))

	chunks := s.Split(doc(100))

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Tokens != 100 {
		t.Errorf("chunk has %d tokens, want 100", chunks[0].Tokens)
	}
}

func TestSplitExactMultipleNoOverlapTail(t *testing.T) {
	s := New(wordTokenizer{}, WithChunkSize(1024), WithOverlap(200))

	// 1848 = 1024 + 824: the second window ends exactly at the last
	// token, so no third window of pure overlap is emitted.
	chunks := s.Split(doc(1848))

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[1].Tokens != 1024 {
		t.Errorf("last chunk has %d tokens, want 1024", chunks[1].Tokens)
	}
}

func TestSplitEmptyDocument(t *testing.T) {
	s := New(wordTokenizer{})

	if chunks := s.Split(models.Document{Text: "   "}); chunks != nil {
		t.Fatalf("got %d chunks for empty document, want none", len(chunks))
	}
}

func TestSplitChunkMetadata(t *testing.T) {
	s := New(wordTokenizer{}, WithChunkSize(10), WithOverlap(2))

	chunks := s.Split(doc(25))

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if c.Metadata[models.MetaChunk] != strconv.Itoa(i) {
			t.Errorf("chunk %d metadata chunk = %q", i, c.Metadata[models.MetaChunk])
		}
		if c.Metadata[models.MetaSource] != "gdrive:f1" {
			t.Errorf("chunk %d lost source metadata", i)
		}
	}

	// Mutating one chunk's metadata must not leak into its siblings.
	chunks[0].Metadata["extra"] = "x"
	if _, ok := chunks[1].Metadata["extra"]; ok {
		t.Error("chunk metadata maps are shared")
	}
}

func TestNewClampsOverlap(t *testing.T) {
	s := New(wordTokenizer{}, WithChunkSize(100), WithOverlap(100))

	if s.overlap >= s.chunkSize {
		t.Fatalf("overlap %d not clamped below chunk size %d", s.overlap, s.chunkSize)
	}

	// A pathological overlap must still terminate.
	chunks := s.Split(doc(250))
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
}
