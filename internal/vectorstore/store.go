package vectorstore

import "context"

// ChunkMetadata travels with every indexed chunk and comes back verbatim on
// query, mirroring the fields the retrieval layer needs to build results and
// citations without touching the corpus store.
type ChunkMetadata struct {
	SongID    int64  `json:"song_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	FullName  string `json:"full_name"`
	LineRange string `json:"lines"`
	URL       string `json:"url"`
}

// QueryResult holds parallel slices: Documents[i], Metadatas[i] and
// Distances[i] describe the i-th nearest entry, ordered by ascending
// distance.
type QueryResult struct {
	Documents []string
	Metadatas []ChunkMetadata
	Distances []float64
}

// Store is the nearest-neighbor index over lyric chunk embeddings. Query is
// the only operation on the chat path; Upsert and Count belong to the offline
// vectorization job.
type Store interface {
	Query(ctx context.Context, embedding []float32, k int) (*QueryResult, error)
	Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []ChunkMetadata) error
	Count(ctx context.Context) (int64, error)
}
