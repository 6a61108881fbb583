package ui

import (
	"time"

	"buck/core/render"
	"buck/core/utils"
)

// debounceWindow absorbs duplicate contact events from the panel.
const debounceWindow = 200 * time.Millisecond

// Region is a rectangular, debounced, hit-testable control.
type Region struct {
	Rect     render.Rect
	Label    string
	Size     int // label font size
	Disabled bool

	timer *utils.Elapsed
}

func newRegion(rect render.Rect, label string, size int, clock utils.Clock) *Region {
	return &Region{Rect: rect, Label: label, Size: size, timer: utils.NewElapsed(clock)}
}

// Colliding reports whether (x, y) lies inside the region, edges included.
func (r *Region) Colliding(x, y int) bool {
	return x >= r.Rect.Left && x <= r.Rect.Right() && y >= r.Rect.Top && y <= r.Rect.Bottom()
}

// Hit is the debounced collision check. A check within the debounce window of
// the previous one never collides; any other check restarts the window.
func (r *Region) Hit(x, y int) bool {
	if r.timer.Elapsed() < debounceWindow {
		return false
	}
	r.timer.Update()
	return !r.Disabled && r.Colliding(x, y)
}

// Local converts screen coordinates to region-relative ones.
func (r *Region) Local(x, y int) (int, int) {
	return x - r.Rect.Left, y - r.Rect.Top
}

func (r *Region) draw(s render.Sink) {
	if r.Disabled || r.Label == "" {
		return
	}
	_ = s.DrawText(r.Label, render.Text{
		Top:   r.Rect.Top,
		Left:  r.Rect.Left,
		Size:  r.Size,
		Style: "regular",
		FG:    render.White,
		BG:    render.Black,
	})
}

func (r *Region) erase(s render.Sink) {
	_ = s.Fill(r.Rect, render.Black)
}
