package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/versedb/versed/internal/model"
	"github.com/versedb/versed/internal/vectorstore"
)

// DefaultTopK is the over-fetch count used by the chat path, deliberately
// larger than what the context assembler keeps so it has room to skip
// per-song duplicates.
const DefaultTopK = 15

// Embedder is the slice of the resilient client the retriever needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedCache fronts the embedder for repeated query texts.
type EmbedCache interface {
	Get(text string) []float32
	Put(text string, vector []float32)
}

type Retriever struct {
	embedder Embedder
	cache    EmbedCache
	store    vectorstore.Store
}

func New(embedder Embedder, cache EmbedCache, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, cache: cache, store: store}
}

// Search embeds the query (through the cache), asks the vector index for the
// k nearest chunks and returns results sorted by ascending distance.
//
// Duplicate flags are assigned in the index's own response order, before the
// sort: the first chunk seen for a (title, artist) pair is never marked
// duplicate, every later chunk of the same song is. Flagging before sorting
// keeps the downstream first-per-song selection deterministic regardless of
// tie-breaking in the final sort.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]model.SearchResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	embedding, err := r.queryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval unavailable: %w", err)
	}
	hits, err := r.store.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector index query: %w", err)
	}

	seen := make(map[string]struct{}, len(hits.Documents))
	results := make([]model.SearchResult, 0, len(hits.Documents))
	for i, doc := range hits.Documents {
		meta := hits.Metadatas[i]
		result := model.SearchResult{
			Text:      doc,
			SongID:    meta.SongID,
			Title:     meta.Title,
			Artist:    meta.Artist,
			FullName:  meta.FullName,
			LineRange: meta.LineRange,
			URL:       meta.URL,
			Distance:  hits.Distances[i],
		}
		key := result.SongKey()
		if _, ok := seen[key]; ok {
			result.DuplicateSong = true
		}
		seen[key] = struct{}{}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	logutil.GetLogger(ctx).Debug("retrieval done",
		zap.String("query", query),
		zap.Int("hits", len(results)))
	return results, nil
}

func (r *Retriever) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if r.cache != nil {
		if cached := r.cache.Get(query); cached != nil {
			logutil.GetLogger(ctx).Debug("query embedding cache hit")
			return cached, nil
		}
	}
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Put(query, embedding)
	}
	return embedding, nil
}
