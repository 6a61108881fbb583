package ui

import (
	"math"
	"strconv"

	"buck/core/render"
	"buck/core/utils"
)

// Layout holds every region of both screens plus the fixed text anchors.
// Geometry is derived once from the viewport; the cover art is a square of the
// viewport's width at the top of the screen.
type Layout struct {
	Width, Height int

	ProgressBar render.Rect
	TextStrip   render.Rect // everything below the cover

	// main player, in hit-test priority order
	PlayPause *Region
	Back5s    *Region
	Forward5s *Region
	Prev      *Region
	Next      *Region
	Close     *Region
	Volume    *Region

	PlayLabel, PauseLabel string

	Title, Artist, VolumeText render.Text

	// track selector
	Keys      []*Region // labels 1..9 then 0
	Back      *Region
	Confirm   *Region
	Entry     render.Rect
	EntryText render.Text
	Heading   render.Text
}

// NewLayout builds the regions for a width x height viewport. Lengths are given
// for a 600x800 panel at scale 1.
func NewLayout(width, height int, scale float64, clock utils.Clock) *Layout {
	if scale <= 0 {
		scale = 1
	}
	px := func(v float64) int { return int(math.Round(v * scale)) }

	const (
		buttonH    = 40
		coverPad   = 35
		seekPad    = 30
		edgePad    = 10
		closeSize  = 74
		barHeight  = 10
		labelSize  = 12
		playSize   = 15
		closeGlyph = 20
	)

	l := &Layout{Width: width, Height: height}
	coverBottom := width
	controlsTop := coverBottom + px(coverPad)
	btnH := px(buttonH)
	mid := width / 2

	l.ProgressBar = render.Rect{Top: coverBottom, Left: 0, Width: width, Height: px(barHeight)}
	l.TextStrip = render.Rect{Top: coverBottom, Left: 0, Width: width, Height: height - coverBottom}

	button := func(left, w int, label string, size int) *Region {
		if left+w > width {
			w = width - left
		}
		return newRegion(render.Rect{Top: controlsTop, Left: left, Width: w, Height: btnH}, label, px(float64(size)), clock)
	}

	l.Prev = button(px(edgePad), px(100), "Previous", labelSize)
	l.Back5s = button(mid-px(9)-px(52)-px(seekPad), px(40), "< 5s", labelSize)
	l.PlayPause = button(mid-px(9), px(40), "", playSize)
	l.Forward5s = button(mid-px(9)+px(20)+px(seekPad), px(40), "5s >", labelSize)
	l.Next = button(width-px(60), px(100), "Next", labelSize)
	l.PlayLabel, l.PauseLabel = "▶", "| |"

	cs := px(closeSize)
	l.Close = newRegion(render.Rect{Top: height - cs, Left: width - cs, Width: cs, Height: cs}, "✕", px(closeGlyph), clock)
	l.Volume = newRegion(render.Rect{Top: 0, Left: 0, Width: width, Height: height / 2}, "", 0, clock)

	l.Title = render.Text{Top: coverBottom + px(110), Left: px(10), Size: px(17), Style: "regular", FG: render.White, BG: render.Black}
	l.Artist = render.Text{Top: coverBottom + px(156), Left: px(10), Size: px(12), Style: "italic", FG: render.White, BG: render.Black}
	l.VolumeText = render.Text{Top: coverBottom - px(50), Left: px(2), Size: px(9), FG: render.White, BG: render.Black, Opaque: true}

	// selector: entry readout on top, a 3x4 keypad, the shared close control below
	l.Heading = render.Text{Top: px(20), Left: px(edgePad), Size: px(labelSize), Style: "italic", FG: render.White, BG: render.Black}
	l.Entry = render.Rect{Top: px(70), Left: 0, Width: width, Height: px(100)}
	l.EntryText = render.Text{Top: px(90), Left: px(edgePad), Size: px(20), Style: "regular", FG: render.White, BG: render.Black}
	padTop := px(200)
	rowH := (height - padTop - cs - px(46)) / 4
	colW := width / 3
	cell := func(row, col int, label string) *Region {
		return newRegion(render.Rect{Top: padTop + row*rowH, Left: col * colW, Width: colW, Height: rowH}, label, px(24), clock)
	}
	for i := 1; i <= 10; i++ {
		label := strconv.Itoa(i % 10)
		if i == 10 {
			l.Keys = append(l.Keys, cell(3, 1, label))
			continue
		}
		l.Keys = append(l.Keys, cell((i-1)/3, (i-1)%3, label))
	}
	l.Back = cell(3, 0, "⌫")
	l.Confirm = cell(3, 2, "OK")
	return l
}

// DisableSeek removes the seek controls from hit-testing and drawing.
func (l *Layout) DisableSeek() {
	l.Back5s.Disabled = true
	l.Forward5s.Disabled = true
}

// mainRegions lists the main player's regions in hit-test priority order.
func (l *Layout) mainRegions() []*Region {
	return []*Region{l.PlayPause, l.Back5s, l.Forward5s, l.Prev, l.Next, l.Close, l.Volume}
}

// VolumeAt maps a tap inside the volume strip to 0..100. The outer sixths of the
// strip clamp to the ends.
func (l *Layout) VolumeAt(x, y int) int {
	lx, _ := l.Volume.Local(x, y)
	w := float64(l.Volume.Rect.Width)
	margin := w / 6
	span := margin * 4
	fx := math.Min(math.Max(float64(lx), margin), margin+span)
	return int(math.Round((fx - margin) * 100 / span))
}
