package model

import "fmt"

// Artwork is an embedded cover picture pulled from a file's tags.
type Artwork struct {
	MIMEType string
	Ext      string
	Data     []byte
}

// Track represents one playable audio file in the catalog.
// Tracks are immutable once cataloged and are shared by value between goroutines.
type Track struct {
	Path        string
	Title       string
	Artist      string
	Album       string
	AlbumArtist string // Set only on the first track of each album after grouping
	Disc        int
	TrackNumber int
	Year        int
	Artwork     *Artwork // Front cover, nil when the file carries none
}

// HasArtwork reports whether an embedded cover can be drawn for the track.
func (t Track) HasArtwork() bool {
	return t.Artwork != nil && len(t.Artwork.Data) > 0
}

func (t Track) String() string {
	return fmt.Sprintf("%s - %s [%s]", t.Artist, t.Title, t.Album)
}
