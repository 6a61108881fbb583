package pointer

import (
	"fmt"
	"math"
	"sync"

	"buck/core/mailbox"
	"buck/logger"
)

// GestureKind tells a press from a release.
type GestureKind int

const (
	PointerOn GestureKind = iota
	PointerOff
)

func (k GestureKind) String() string {
	switch k {
	case PointerOn:
		return "on"
	case PointerOff:
		return "off"
	default:
		return fmt.Sprintf("GestureKind(%d)", int(k))
	}
}

// Gesture is one contact transition in viewport pixels.
type Gesture struct {
	Kind GestureKind
	X, Y int
}

// EventSource hands out buffered raw events. *Reader satisfies it.
type EventSource interface {
	Drain() []InputEvent
}

// Geometry maps the panel's raw axis range onto the viewport.
type Geometry struct {
	AxisMaxX int // zero keeps raw values
	AxisMaxY int
	Width    int
	Height   int
	Swap     bool // position codes arrive crossed: 53 carries Y, 54 carries X
}

// Decoder is the second stage. It keeps the last known coordinates and turns
// tracking-id changes into gestures.
type Decoder struct {
	src  EventSource
	geom Geometry

	mu   sync.Mutex
	x, y int

	gestures *mailbox.Queue[Gesture]
}

// NewDecoder wraps src.
func NewDecoder(src EventSource, geom Geometry) *Decoder {
	return &Decoder{
		src:      src,
		geom:     geom,
		gestures: mailbox.New[Gesture](),
	}
}

// Gestures is the outgoing gesture queue.
func (d *Decoder) Gestures() *mailbox.Queue[Gesture] {
	return d.gestures
}

// Coords returns the last known position.
func (d *Decoder) Coords() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.x, d.y
}

// CheckInput decodes everything the acquisition stage has buffered since the last call.
func (d *Decoder) CheckInput() {
	for _, ev := range d.src.Drain() {
		d.apply(ev)
	}
}

func (d *Decoder) apply(ev InputEvent) {
	if ev.Type == evSyn {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Code {
	case absMTPositionX:
		if d.geom.Swap {
			d.y = scale(ev.Value, d.geom.AxisMaxY, d.geom.Height)
		} else {
			d.x = scale(ev.Value, d.geom.AxisMaxX, d.geom.Width)
		}
	case absMTPositionY:
		if d.geom.Swap {
			d.x = scale(ev.Value, d.geom.AxisMaxX, d.geom.Width)
		} else {
			d.y = scale(ev.Value, d.geom.AxisMaxY, d.geom.Height)
		}
	case absMTTrackingID:
		switch ev.Value {
		case -1:
			d.gestures.Send(Gesture{Kind: PointerOn, X: d.x, Y: d.y})
		case 0:
			d.gestures.Send(Gesture{Kind: PointerOff, X: d.x, Y: d.y})
		}
	default:
		logger.Debug("unknown input event",
			logger.Component("pointer"),
			logger.Int64("sec", ev.Sec),
			logger.Int("type", int(ev.Type)),
			logger.Int("code", int(ev.Code)),
			logger.Int("value", int(ev.Value)))
	}
}

func scale(v int32, axisMax, size int) int {
	if axisMax <= 0 {
		return int(v)
	}
	return int(math.Round(float64(v) / float64(axisMax) * float64(size)))
}
