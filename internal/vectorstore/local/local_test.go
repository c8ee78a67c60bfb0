package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"drive-rag/internal/models"
	"drive-rag/internal/vectorstore"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("", "test-index")
	require.NoError(t, err)
	require.NoError(t, s.EnsureIndex(context.Background(), 3))
	return s
}

func entry(id string, values []float32, text string) vectorstore.Entry {
	return vectorstore.Entry{
		ID:     id,
		Values: values,
		Metadata: map[string]string{
			models.MetaText:   text,
			models.MetaSource: "gdrive:f1",
		},
	}
}

func TestUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	err := s.Upsert(ctx, []vectorstore.Entry{
		entry("a", []float32{1, 0, 0}, "alpha"),
		entry("b", []float32{0, 1, 0}, "beta"),
	})
	require.NoError(t, err)

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "a", matches[0].ID)
	require.Equal(t, "alpha", matches[0].Metadata[models.MetaText])
}

func TestQueryClampsTopK(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Upsert(ctx, []vectorstore.Entry{
		entry("a", []float32{1, 0, 0}, "alpha"),
	}))

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestQueryEmptyCollection(t *testing.T) {
	s := newMemStore(t)

	matches, err := s.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestUpsertSameIDOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Upsert(ctx, []vectorstore.Entry{
		entry("a", []float32{1, 0, 0}, "first"),
	}))
	require.NoError(t, s.Upsert(ctx, []vectorstore.Entry{
		entry("a", []float32{1, 0, 0}, "second"),
	}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), stats.TotalVectors)

	matches, err := s.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, "second", matches[0].Metadata[models.MetaText])
}

func TestUpsertBeforeEnsureIndex(t *testing.T) {
	s, err := New("", "test-index")
	require.NoError(t, err)

	err = s.Upsert(context.Background(), []vectorstore.Entry{
		entry("a", []float32{1}, "x"),
	})
	require.Error(t, err)
}

func TestUpsertEmptySlice(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, s.Upsert(context.Background(), nil))
}
