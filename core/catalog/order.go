package catalog

import (
	"sort"

	"buck/model"
)

// Order groups tracks by album and returns them in playback order:
// albums by (album artist, newest year, name), tracks inside an album by (disc, track).
// AlbumArtist is kept only on the first track of each album.
func Order(tracks []model.Track) []model.Track {
	albums := groupAlbums(tracks)

	sort.SliceStable(albums, func(i, j int) bool {
		return albums[i].Less(albums[j])
	})

	out := make([]model.Track, 0, len(tracks))
	for _, a := range albums {
		for i, t := range a.Tracks {
			if i == 0 {
				t.AlbumArtist = a.Artist
			} else {
				t.AlbumArtist = ""
			}
			out = append(out, t)
		}
	}
	return out
}

func groupAlbums(tracks []model.Track) []*model.Album {
	byName := make(map[string]*model.Album)
	var albums []*model.Album

	for _, t := range tracks {
		a, ok := byName[t.Album]
		if !ok {
			a = &model.Album{Name: t.Album}
			byName[t.Album] = a
			albums = append(albums, a)
		}
		a.Tracks = append(a.Tracks, t)
		if t.Year > a.Year {
			a.Year = t.Year
		}
	}

	for _, a := range albums {
		sort.SliceStable(a.Tracks, func(i, j int) bool {
			ti, tj := a.Tracks[i], a.Tracks[j]
			if ti.Disc != tj.Disc {
				return ti.Disc < tj.Disc
			}
			return ti.TrackNumber < tj.TrackNumber
		})
		a.Artist = primaryArtist(a.Tracks)
	}
	return albums
}

// primaryArtist prefers an album-artist tag and falls back to the opening track's artist.
func primaryArtist(tracks []model.Track) string {
	for _, t := range tracks {
		if t.AlbumArtist != "" {
			return t.AlbumArtist
		}
	}
	if len(tracks) > 0 {
		return tracks[0].Artist
	}
	return ""
}
