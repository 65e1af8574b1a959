package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/versedb/versed/internal/chunker"
	"github.com/versedb/versed/internal/model"
	"github.com/versedb/versed/internal/repo"
	"github.com/versedb/versed/internal/vectorstore"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type IndexReport struct {
	Songs    int   `json:"songs"`
	Chunks   int   `json:"chunks"`
	Indexed  int   `json:"indexed"`
	Failed   int   `json:"failed"`
	Total    int64 `json:"index_size"`
	Duration int64 `json:"duration_ms"`
}

// IndexService is the offline vectorization path: it chunks every song with
// lyrics, embeds each chunk through the same resilient client the chat path
// uses, and upserts into the vector index in batches. Chunk ids are
// deterministic, so a rerun refreshes rows in place.
type IndexService struct {
	songs     *repo.SongRepo
	embedder  Embedder
	store     vectorstore.Store
	batchSize int
}

func NewIndexService(songs *repo.SongRepo, embedder Embedder, store vectorstore.Store, batchSize int) *IndexService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IndexService{
		songs:     songs,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

func (s *IndexService) Reindex(ctx context.Context) (*IndexReport, error) {
	logger := logutil.GetLogger(ctx)
	started := time.Now()
	songs, err := s.songs.ListWithLyrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	logger.Info("vectorization started", zap.Int("songs", len(songs)))

	report := &IndexReport{Songs: len(songs)}
	var ids []string
	var embeddings [][]float32
	var documents []string
	var metadatas []vectorstore.ChunkMetadata

	flushBatch := func() error {
		if len(ids) == 0 {
			return nil
		}
		if err := s.store.Upsert(ctx, ids, embeddings, documents, metadatas); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		report.Indexed += len(ids)
		ids, embeddings, documents, metadatas = nil, nil, nil, nil
		return nil
	}

	for _, song := range songs {
		chunks := chunker.Chunk(song.Lyrics, song.ID, chunker.DefaultMaxLines)
		report.Chunks += len(chunks)
		for _, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			embedding, err := s.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				report.Failed++
				logger.Warn("chunk embedding failed",
					zap.String("chunk", chunk.ID()),
					zap.Error(err))
				continue
			}
			ids = append(ids, chunk.ID())
			embeddings = append(embeddings, embedding)
			documents = append(documents, chunk.Text)
			metadatas = append(metadatas, chunkMetadata(&song, &chunk))
			if len(ids) >= s.batchSize {
				if err := flushBatch(); err != nil {
					return report, err
				}
			}
		}
	}
	if err := flushBatch(); err != nil {
		return report, err
	}

	if total, err := s.store.Count(ctx); err == nil {
		report.Total = total
	}
	report.Duration = time.Since(started).Milliseconds()
	logger.Info("vectorization finished",
		zap.Int("songs", report.Songs),
		zap.Int("chunks", report.Chunks),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed))
	return report, nil
}

func chunkMetadata(song *model.Song, chunk *model.LyricChunk) vectorstore.ChunkMetadata {
	return vectorstore.ChunkMetadata{
		SongID:    song.ID,
		Title:     song.Title,
		Artist:    song.Artist,
		FullName:  song.FullName(),
		LineRange: chunk.LineRange(),
		URL:       song.URL,
	}
}
