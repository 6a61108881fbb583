package model

import "strings"

// Album groups the tracks sharing an album name during cataloging.
type Album struct {
	Name   string
	Artist string // Primary album artist, used for ordering
	Year   int
	Tracks []Track
}

// Less orders albums by artist (case-insensitive), newest year first, then name.
func (a *Album) Less(b *Album) bool {
	if la, lb := strings.ToLower(a.Artist), strings.ToLower(b.Artist); la != lb {
		return la < lb
	}
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	return a.Name < b.Name
}
