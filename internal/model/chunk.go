package model

import "fmt"

// LyricChunk is one contiguous span of lyric lines treated as a single
// retrievable unit. Chunks are produced once per song by the chunker and are
// immutable afterwards; the composite ID doubles as the vector index key so
// re-vectorizing a song overwrites its old entries instead of duplicating them.
type LyricChunk struct {
	SongID     int64  `json:"song_id"`
	Text       string `json:"text"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	ChunkIndex int    `json:"chunk_index"`
}

func (c *LyricChunk) ID() string {
	return fmt.Sprintf("song_%d_chunk_%d", c.SongID, c.ChunkIndex)
}

// LineRange renders the 1-based inclusive range label, e.g. "9-16".
func (c *LyricChunk) LineRange() string {
	return fmt.Sprintf("%d-%d", c.LineStart, c.LineEnd)
}
