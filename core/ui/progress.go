package ui

import (
	"math"

	"buck/core/render"
)

// progressQuantum is the smallest span the progress bar is redrawn in, in pixels.
const progressQuantum = 6

// Span is a horizontal stretch of the progress bar to repaint.
type Span struct {
	Start, End int // [Start, End)
	Color      string
}

// Progress tracks the last drawn cursor of the progress bar. Positions are
// quantized to progressQuantum cells, so movement inside one cell issues no redraw.
type Progress struct {
	width   int
	quantum int
	cursor  int
}

func newProgress(width int) *Progress {
	return &Progress{width: width, quantum: progressQuantum}
}

// Cursor is the last drawn pixel offset.
func (p *Progress) Cursor() int { return p.cursor }

func (p *Progress) cell(pos, length float64) int {
	if length <= 0 || pos <= 0 {
		return 0
	}
	if pos >= length {
		return p.width
	}
	cells := math.Floor(pos / length * float64(p.width) / float64(p.quantum))
	return min(int(cells)*p.quantum, p.width)
}

// Advance moves the cursor to pos and returns the span that changed. Forward
// movement paints the newly elapsed width, backward movement repaints what is
// now ahead of the cursor.
func (p *Progress) Advance(pos, length float64) (Span, bool) {
	next := p.cell(pos, length)
	if next == p.cursor {
		return Span{}, false
	}
	var s Span
	if next > p.cursor {
		s = Span{Start: p.cursor, End: next, Color: render.GrayD}
	} else {
		s = Span{Start: next, End: p.cursor, Color: render.Gray6}
	}
	p.cursor = next
	return s, true
}

// Rebase jumps the cursor to pos without producing a span and returns it.
func (p *Progress) Rebase(pos, length float64) int {
	p.cursor = p.cell(pos, length)
	return p.cursor
}
