package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// PGStore keeps chunk embeddings in a postgres table with a pgvector column.
// Chunk ids are deterministic (song_{id}_chunk_{n}), so Upsert overwrites
// prior rows for a re-vectorized song instead of accumulating duplicates.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Query(ctx context.Context, embedding []float32, k int) (*QueryResult, error) {
	if k <= 0 {
		k = 10
	}
	const query = `
		SELECT document, song_id, title, artist, full_name, lines, url,
			embedding <=> $1 AS distance
		FROM lyric_chunks
		ORDER BY distance ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := &QueryResult{}
	for rows.Next() {
		var doc string
		var meta ChunkMetadata
		var distance float64
		if err := rows.Scan(&doc, &meta.SongID, &meta.Title, &meta.Artist, &meta.FullName, &meta.LineRange, &meta.URL, &distance); err != nil {
			return nil, err
		}
		result.Documents = append(result.Documents, doc)
		result.Metadatas = append(result.Metadatas, meta)
		result.Distances = append(result.Distances, distance)
	}
	return result, rows.Err()
}

func (s *PGStore) Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []ChunkMetadata) error {
	if len(ids) != len(embeddings) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert arrays must be the same length")
	}
	const query = `
		INSERT INTO lyric_chunks (id, song_id, title, artist, full_name, lines, url, document, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			full_name = EXCLUDED.full_name,
			lines = EXCLUDED.lines,
			url = EXCLUDED.url,
			document = EXCLUDED.document,
			embedding = EXCLUDED.embedding
	`
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, id := range ids {
		meta := metadatas[i]
		if _, err := stmt.ExecContext(ctx, id,
			meta.SongID, meta.Title, meta.Artist, meta.FullName, meta.LineRange, meta.URL,
			documents[i], pgvector.NewVector(embeddings[i]),
		); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lyric_chunks`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
