package retriever_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versedb/versed/internal/embedcache"
	"github.com/versedb/versed/internal/retriever"
	"github.com/versedb/versed/internal/vectorstore"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeStore struct {
	result *vectorstore.QueryResult
	calls  int
	lastK  int
}

func (f *fakeStore) Query(ctx context.Context, embedding []float32, k int) (*vectorstore.QueryResult, error) {
	f.calls++
	f.lastK = k
	return f.result, nil
}

func (f *fakeStore) Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []vectorstore.ChunkMetadata) error {
	return nil
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) { return 0, nil }

func hit(title, artist string) vectorstore.ChunkMetadata {
	return vectorstore.ChunkMetadata{Title: title, Artist: artist, FullName: title + " - " + artist}
}

func TestSearchFlagsDuplicatesBeforeSort(t *testing.T) {
	store := &fakeStore{result: &vectorstore.QueryResult{
		Documents: []string{"chunk a1", "chunk b", "chunk a2"},
		Metadatas: []vectorstore.ChunkMetadata{hit("Song A", "X"), hit("Song B", "X"), hit("Song A", "X")},
		Distances: []float64{0.1, 0.2, 0.3},
	}}
	embedder := &fakeEmbedder{vector: []float32{1, 2}}
	r := retriever.New(embedder, nil, store)

	results, err := r.Search(context.Background(), "query", 15)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, 15, store.lastK)
	require.False(t, results[0].DuplicateSong)
	require.False(t, results[1].DuplicateSong)
	require.True(t, results[2].DuplicateSong)
	require.Equal(t, "chunk a2", results[2].Text)
}

func TestSearchDuplicateFlagsSurviveResort(t *testing.T) {
	// The index answers out of distance order; the first chunk the index
	// returned for Song A must stay unflagged even though it sorts last.
	store := &fakeStore{result: &vectorstore.QueryResult{
		Documents: []string{"far a", "near b", "near a"},
		Metadatas: []vectorstore.ChunkMetadata{hit("Song A", "X"), hit("Song B", "X"), hit("Song A", "X")},
		Distances: []float64{0.9, 0.1, 0.2},
	}}
	embedder := &fakeEmbedder{vector: []float32{1}}
	r := retriever.New(embedder, nil, store)

	results, err := r.Search(context.Background(), "query", 15)
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2, 0.9}, []float64{results[0].Distance, results[1].Distance, results[2].Distance})
	require.Equal(t, "near b", results[0].Text)
	require.True(t, results[1].DuplicateSong, "second chunk seen for Song A stays flagged after the sort")
	require.False(t, results[2].DuplicateSong, "first chunk seen for Song A stays unflagged after the sort")
}

func TestSearchEmbedFailureSkipsIndex(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("embedding unavailable")}
	r := retriever.New(embedder, nil, store)

	_, err := r.Search(context.Background(), "query", 15)
	require.Error(t, err)
	require.Zero(t, store.calls)
}

func TestSearchUsesEmbeddingCache(t *testing.T) {
	store := &fakeStore{result: &vectorstore.QueryResult{}}
	embedder := &fakeEmbedder{vector: []float32{1}}
	cache := embedcache.New()
	r := retriever.New(embedder, cache, store)

	_, err := r.Search(context.Background(), "query", 15)
	require.NoError(t, err)
	_, err = r.Search(context.Background(), "query", 15)
	require.NoError(t, err)
	require.Equal(t, 1, embedder.calls)
	require.Equal(t, 2, store.calls)
}
