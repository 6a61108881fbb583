package catalog

import (
	"errors"

	"buck/model"
)

// ErrEmptyCatalog is returned when no playable file was found under the music roots.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Catalog is the ordered, read-only track list built once at startup.
// It is never mutated after construction, so it is shared between goroutines without locking.
type Catalog struct {
	tracks []model.Track
}

// New wraps an already ordered track list.
func New(tracks []model.Track) *Catalog {
	cp := make([]model.Track, len(tracks))
	copy(cp, tracks)
	return &Catalog{tracks: cp}
}

// Load scans the roots, orders the result and fails with ErrEmptyCatalog when nothing was found.
func Load(roots, extensions []string) (*Catalog, error) {
	tracks, err := Scan(roots, extensions)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrEmptyCatalog
	}
	return New(Order(tracks)), nil
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Track returns the track at index i.
func (c *Catalog) Track(i int) (model.Track, bool) {
	if i < 0 || i >= len(c.tracks) {
		return model.Track{}, false
	}
	return c.tracks[i], true
}

// Tracks returns a copy of the ordered list.
func (c *Catalog) Tracks() []model.Track {
	cp := make([]model.Track, len(c.tracks))
	copy(cp, c.tracks)
	return cp
}

// Next returns the index after i, wrapping to 0 past the end.
func (c *Catalog) Next(i int) int {
	if len(c.tracks) == 0 {
		return 0
	}
	return (i + 1) % len(c.tracks)
}

// Prev returns the index before i, wrapping to the last track before 0.
func (c *Catalog) Prev(i int) int {
	n := len(c.tracks)
	if n == 0 {
		return 0
	}
	return (i - 1 + n) % n
}
