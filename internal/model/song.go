package model

type Song struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Lyrics   string `json:"lyrics,omitempty"`
	URL      string `json:"url"`
	Views    int64  `json:"views"`
	Featured bool   `json:"featured"`
}

// FullName is the display label used in context blocks and index metadata.
func (s *Song) FullName() string {
	return s.Title + " - " + s.Artist
}

type CatalogStats struct {
	TotalSongs    int64          `json:"total_songs"`
	TotalArtists  int64          `json:"total_artists"`
	TotalViews    int64          `json:"total_views"`
	WithLyrics    int64          `json:"with_lyrics"`
	TopSongs      []Song         `json:"top_songs"`
	Collaborators []Collaborator `json:"top_collaborators"`
}

type Collaborator struct {
	Artist     string `json:"artist"`
	SongCount  int64  `json:"song_count"`
	TotalViews int64  `json:"total_views"`
}
