// Package render issues drawing instructions to the e-ink display.
package render

import "fmt"

// Color names understood by fbink.
const (
	Black = "BLACK"
	White = "WHITE"
	GrayD = "GRAYD"
	Gray6 = "GRAY6"
	Gray8 = "GRAY8"
)

// Rect is a screen rectangle in pixels.
type Rect struct {
	Top, Left     int
	Width, Height int
}

// Right is the column just past r.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom is the row just past r.
func (r Rect) Bottom() int { return r.Top + r.Height }

func (r Rect) String() string {
	return fmt.Sprintf("top=%d,left=%d,width=%d,height=%d", r.Top, r.Left, r.Width, r.Height)
}

// Text describes one string drawn at a position.
type Text struct {
	Top, Left int
	Size      int
	Style     string // regular, italic, bold or bolditalic
	Font      string // font file; empty uses the bundled family
	FG, BG    string
	Opaque    bool // paint the background box behind the glyphs
}

// Sink is a fire-and-forget drawing surface. Errors only report that the
// instruction could not be issued.
type Sink interface {
	Clear(color string) error
	Fill(r Rect, color string) error
	DrawText(s string, t Text) error
	DrawImage(path string) error
	Status(line int, text string) error
}
