package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/versedb/versed/internal/chunker"
)

func TestChunkSingleBlock(t *testing.T) {
	chunks := chunker.Chunk("first line\nsecond line\nthird line", 7, chunker.DefaultMaxLines)
	require.Len(t, chunks, 1)
	require.Equal(t, "first line\nsecond line\nthird line", chunks[0].Text)
	require.Equal(t, 1, chunks[0].LineStart)
	require.Equal(t, 3, chunks[0].LineEnd)
	require.Equal(t, 0, chunks[0].ChunkIndex)
	require.Equal(t, "song_7_chunk_0", chunks[0].ID())
}

func TestChunkSplitsOnEmptyLine(t *testing.T) {
	chunks := chunker.Chunk("a\nb\n\nc\nd", 1, chunker.DefaultMaxLines)
	require.Len(t, chunks, 2)
	require.Equal(t, "a\nb", chunks[0].Text)
	require.Equal(t, 1, chunks[0].LineStart)
	require.Equal(t, 2, chunks[0].LineEnd)
	require.Equal(t, "c\nd", chunks[1].Text)
	require.Equal(t, 4, chunks[1].LineStart)
	require.Equal(t, 5, chunks[1].LineEnd)
}

func TestChunkSplitsOnSectionMarker(t *testing.T) {
	chunks := chunker.Chunk("a\nb\n[Verse 2]\nc\nd", 1, chunker.DefaultMaxLines)
	require.Len(t, chunks, 2)
	require.Equal(t, "a\nb", chunks[0].Text)
	require.Equal(t, "c\nd", chunks[1].Text)
	require.Equal(t, 4, chunks[1].LineStart)
	require.Equal(t, 5, chunks[1].LineEnd)
}

func TestChunkForcedFlushKeepsLineNumbers(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "la la la"
	}
	chunks := chunker.Chunk(strings.Join(lines, "\n"), 1, 4)
	require.Len(t, chunks, 3)
	require.Equal(t, 1, chunks[0].LineStart)
	require.Equal(t, 4, chunks[0].LineEnd)
	require.Equal(t, 5, chunks[1].LineStart)
	require.Equal(t, 8, chunks[1].LineEnd)
	require.Equal(t, 9, chunks[2].LineStart)
	require.Equal(t, 10, chunks[2].LineEnd)
	for i, chunk := range chunks {
		require.Equal(t, i, chunk.ChunkIndex)
	}
}

func TestChunkLeadingMarkerLine(t *testing.T) {
	chunks := chunker.Chunk("[Intro]\nyeah\nyeah", 1, chunker.DefaultMaxLines)
	require.Len(t, chunks, 1)
	require.Equal(t, "yeah\nyeah", chunks[0].Text)
	require.Equal(t, 2, chunks[0].LineStart)
	require.Equal(t, 3, chunks[0].LineEnd)
}

func TestChunkConsecutiveBreakLines(t *testing.T) {
	// Blank line followed by a marker line: both consume line numbers, so
	// the next chunk starts after the full break run.
	chunks := chunker.Chunk("a\n\n[Chorus]\nb", 1, chunker.DefaultMaxLines)
	require.Len(t, chunks, 2)
	require.Equal(t, "a", chunks[0].Text)
	require.Equal(t, 1, chunks[0].LineStart)
	require.Equal(t, 1, chunks[0].LineEnd)
	require.Equal(t, "b", chunks[1].Text)
	require.Equal(t, 4, chunks[1].LineStart)
	require.Equal(t, 4, chunks[1].LineEnd)

	chunks = chunker.Chunk("a\n\n\n\nb", 1, chunker.DefaultMaxLines)
	require.Len(t, chunks, 2)
	require.Equal(t, 5, chunks[1].LineStart)
	require.Equal(t, 5, chunks[1].LineEnd)
}

func TestChunkEmptyInput(t *testing.T) {
	require.Nil(t, chunker.Chunk("", 1, chunker.DefaultMaxLines))
	require.Nil(t, chunker.Chunk("  \n\t\n", 1, chunker.DefaultMaxLines))
}

func TestChunkDeterministic(t *testing.T) {
	text := "a\nb\n\n[Chorus]\nc\nd\ne\nf\ng\nh\ni\nj"
	first := chunker.Chunk(text, 3, chunker.DefaultMaxLines)
	second := chunker.Chunk(text, 3, chunker.DefaultMaxLines)
	require.Equal(t, first, second)
}
