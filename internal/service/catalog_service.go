package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/versedb/versed/internal/model"
	"github.com/versedb/versed/internal/repo"
)

const statsCacheKey = "catalog_stats"

// CatalogService is the thin read-only browsing surface over the corpus.
type CatalogService struct {
	songs      *repo.SongRepo
	statsCache *expirable.LRU[string, *model.CatalogStats]
}

func NewCatalogService(songs *repo.SongRepo) *CatalogService {
	return &CatalogService{
		songs:      songs,
		statsCache: expirable.NewLRU[string, *model.CatalogStats](1, nil, 10*time.Minute),
	}
}

func (s *CatalogService) List(ctx context.Context, opts repo.ListOptions) ([]model.Song, error) {
	songs, err := s.songs.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	// Full lyric bodies stay out of listings.
	for i := range songs {
		songs[i].Lyrics = ""
	}
	return songs, nil
}

func (s *CatalogService) Get(ctx context.Context, songID int64) (*model.Song, error) {
	return s.songs.GetByID(ctx, songID)
}

func (s *CatalogService) Stats(ctx context.Context) (*model.CatalogStats, error) {
	if cached, ok := s.statsCache.Get(statsCacheKey); ok {
		return cached, nil
	}
	stats, err := s.songs.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.statsCache.Add(statsCacheKey, stats)
	return stats, nil
}
