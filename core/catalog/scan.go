package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"buck/logger"
	"buck/model"

	"github.com/dhowden/tag"
)

// Scan walks every root and returns one unordered Track per audio file.
// Hidden files and directories are skipped. Unreadable or missing tags fall back
// to values derived from the file and parent directory names.
func Scan(roots, extensions []string) ([]model.Track, error) {
	accept := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		accept[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	var tracks []model.Track
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("skipping unreadable path",
					logger.Component("catalog"),
					logger.String("path", path),
					logger.ErrorField(err))
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if path != root && isHidden(d.Name()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if !accept[ext] {
				return nil
			}
			tracks = append(tracks, readTrack(path))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	logger.Info("catalog scanned",
		logger.Component("catalog"),
		logger.Int("tracks", len(tracks)))
	return tracks, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// readTrack builds a Track from the file's tags, keeping the path-derived defaults
// for every field the tags do not provide.
func readTrack(path string) model.Track {
	t := model.Track{
		Path:  path,
		Title: filepath.Base(path),
		Album: filepath.Base(filepath.Dir(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("cannot open track",
			logger.Component("catalog"),
			logger.String("path", path),
			logger.ErrorField(err))
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		logger.Debug("no tags",
			logger.Component("catalog"),
			logger.String("path", path),
			logger.ErrorField(err))
		return t
	}

	applyMetadata(&t, m)
	return t
}

func applyMetadata(t *model.Track, m tag.Metadata) {
	if v := m.Title(); v != "" {
		t.Title = v
	}
	if v := m.Artist(); v != "" {
		t.Artist = v
	}
	if v := m.Album(); v != "" {
		t.Album = v
	}
	if v := m.AlbumArtist(); v != "" {
		t.AlbumArtist = v
	}
	if n, _ := m.Track(); n > 0 {
		t.TrackNumber = n
	}
	if n, _ := m.Disc(); n > 0 {
		t.Disc = n
	}
	if y := m.Year(); y > 0 {
		t.Year = y
	}
	if y, ok := originalYear(m.Raw()); ok {
		t.Year = y
	}
	if p := m.Picture(); p != nil && len(p.Data) > 0 {
		t.Artwork = &model.Artwork{MIMEType: p.MIMEType, Ext: p.Ext, Data: p.Data}
	}
}

// originalYear reads the original-release frames (TDOR for ID3v2.4, TORY for v2.3),
// which win over the recording year.
func originalYear(raw map[string]interface{}) (int, bool) {
	for _, key := range []string{"TDOR", "TORY"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || len(s) < 4 {
			continue
		}
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return y, true
		}
	}
	return 0, false
}
