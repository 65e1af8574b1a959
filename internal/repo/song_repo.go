package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/versedb/versed/internal/model"
	"github.com/versedb/versed/internal/pkg/dbutil"
	appErr "github.com/versedb/versed/internal/pkg/errors"
)

// SongRepo is read-only access to the authoritative corpus. Lyrics are
// written by the external scraper; this layer never mutates them.
type SongRepo struct {
	db *sql.DB
}

func NewSongRepo(db *sql.DB) *SongRepo {
	return &SongRepo{db: db}
}

var songFields = []string{"id", "title", "artist", "lyrics", "url", "views", "featured"}

func (r *SongRepo) GetByID(ctx context.Context, songID int64) (*model.Song, error) {
	where := map[string]interface{}{
		"id": songID,
	}
	sqlStr, args, err := builder.BuildSelect("songs", where, songFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	song, err := scanSong(row)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

type ListOptions struct {
	Search string
	SortBy string
	Desc   bool
	Limit  int
	Offset int
}

func (r *SongRepo) List(ctx context.Context, opts ListOptions) ([]model.Song, error) {
	where := map[string]interface{}{}
	if opts.Search != "" {
		where["_or"] = []map[string]interface{}{
			{"title like": "%" + opts.Search + "%"},
			{"artist like": "%" + opts.Search + "%"},
		}
	}
	sortBy := opts.SortBy
	switch sortBy {
	case "title", "artist", "views":
	default:
		sortBy = "views"
	}
	order := sortBy
	if opts.Desc {
		order += " desc"
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	where["_orderby"] = order
	where["_limit"] = []uint{uint(opts.Offset), uint(limit)}
	sqlStr, args, err := builder.BuildSelect("songs", where, songFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var songs []model.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}
	return songs, rows.Err()
}

// ListWithLyrics feeds the offline vectorization job, most viewed first.
func (r *SongRepo) ListWithLyrics(ctx context.Context) ([]model.Song, error) {
	const query = `
		SELECT id, title, artist, lyrics, url, views, featured
		FROM songs
		WHERE lyrics IS NOT NULL AND lyrics <> ''
		ORDER BY views DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var songs []model.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}
	return songs, rows.Err()
}

func (r *SongRepo) Stats(ctx context.Context) (*model.CatalogStats, error) {
	stats := &model.CatalogStats{}
	const totals = `
		SELECT COUNT(*),
			COUNT(DISTINCT artist),
			COALESCE(SUM(views), 0),
			COUNT(*) FILTER (WHERE lyrics IS NOT NULL AND lyrics <> '')
		FROM songs
	`
	if err := r.db.QueryRowContext(ctx, totals).Scan(
		&stats.TotalSongs, &stats.TotalArtists, &stats.TotalViews, &stats.WithLyrics,
	); err != nil {
		return nil, err
	}

	const topSongs = `
		SELECT id, title, artist, url, views
		FROM songs
		ORDER BY views DESC
		LIMIT 10
	`
	rows, err := r.db.QueryContext(ctx, topSongs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var song model.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.URL, &song.Views); err != nil {
			return nil, err
		}
		stats.TopSongs = append(stats.TopSongs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const collaborators = `
		SELECT artist, COUNT(*), COALESCE(SUM(views), 0)
		FROM songs
		WHERE featured = TRUE
		GROUP BY artist
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`
	collabRows, err := r.db.QueryContext(ctx, collaborators)
	if err != nil {
		return nil, err
	}
	defer collabRows.Close()
	for collabRows.Next() {
		var item model.Collaborator
		if err := collabRows.Scan(&item.Artist, &item.SongCount, &item.TotalViews); err != nil {
			return nil, err
		}
		stats.Collaborators = append(stats.Collaborators, item)
	}
	return stats, collabRows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSong(row rowScanner) (*model.Song, error) {
	var song model.Song
	var lyrics sql.NullString
	if err := row.Scan(&song.ID, &song.Title, &song.Artist, &lyrics, &song.URL, &song.Views, &song.Featured); err != nil {
		return nil, err
	}
	song.Lyrics = lyrics.String
	return &song, nil
}
