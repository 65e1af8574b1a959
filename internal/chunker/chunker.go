package chunker

import (
	"strings"

	"github.com/versedb/versed/internal/model"
)

// DefaultMaxLines bounds chunk size so a single chunk never dominates the
// downstream context token budget.
const DefaultMaxLines = 8

var sectionMarkers = []string{"chorus", "verse", "intro", "outro", "bridge", "hook"}

// Chunk splits one song's lyrics into addressable spans of lines. A chunk
// ends on a section break (empty line or a structural marker line) or when it
// reaches maxLines, whichever comes first. Line ranges are 1-based inclusive
// and stay accurate across forced flushes. The function is pure: the same
// input always yields the same chunk sequence, which keeps re-vectorization
// idempotent.
func Chunk(text string, songID int64, maxLines int) []model.LyricChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	lines := strings.Split(text, "\n")
	var chunks []model.LyricChunk
	var buffer []string
	lineStart := 1

	// flush emits the buffered lines and advances lineStart to nextStart,
	// the 1-based number of the line after the break. The advance happens
	// even when the buffer is empty: a leading marker line or stacked break
	// lines still consume line numbers. nextStart 0 means end of text.
	flush := func(nextStart int) {
		if len(buffer) > 0 {
			chunkText := strings.Join(buffer, "\n")
			if strings.TrimSpace(chunkText) != "" {
				chunks = append(chunks, model.LyricChunk{
					SongID:     songID,
					Text:       chunkText,
					LineStart:  lineStart,
					LineEnd:    lineStart + len(buffer) - 1,
					ChunkIndex: len(chunks),
				})
			}
			buffer = nil
		}
		if nextStart > 0 {
			lineStart = nextStart
		}
	}

	for i, line := range lines {
		if isSectionBreak(line) {
			flush(i + 2)
			continue
		}
		buffer = append(buffer, line)
		if len(buffer) >= maxLines {
			flush(i + 2)
		}
	}
	flush(0)
	return chunks
}

func isSectionBreak(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	lower := strings.ToLower(line)
	for _, marker := range sectionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
