package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// SearchResult is one vector index hit, scoped to a single chat turn.
// Results are ordered by ascending distance (lower = closer match).
// DuplicateSong is true iff an earlier hit, in the index's own response
// order, already carried the same (title, artist) pair.
type SearchResult struct {
	Text          string  `json:"text"`
	SongID        int64   `json:"song_id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	FullName      string  `json:"full_name"`
	LineRange     string  `json:"lines"`
	URL           string  `json:"url"`
	Distance      float64 `json:"distance"`
	DuplicateSong bool    `json:"is_duplicate"`
}

func (r *SearchResult) SongKey() string {
	return r.Title + "\x00" + r.Artist
}

// ConversationTurn is a caller-supplied history entry.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Citation struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	URL       string `json:"url"`
	LineRange string `json:"lines"`
}

// ChatAnswer is the terminal artifact of one chat turn. Citations are derived
// from retrieval evidence, never from the generated text.
type ChatAnswer struct {
	Response  string     `json:"response"`
	Citations []Citation `json:"citations"`
	Query     string     `json:"query"`
}
