// Package ui merges pointer gestures, player replies and remote commands into one
// ordered loop that drives the e-ink screens.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"buck/core/catalog"
	"buck/core/mailbox"
	"buck/core/player"
	"buck/core/pointer"
	"buck/core/render"
	"buck/core/utils"
	"buck/logger"
	"buck/model"
	"buck/server"
)

const defaultPollWait = 50 * time.Millisecond

// Visibility is the active screen.
type Visibility int

const (
	Hidden Visibility = iota
	MainVisible
	SelectorVisible
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case MainVisible:
		return "main"
	case SelectorVisible:
		return "selector"
	default:
		return "Visibility(" + strconv.Itoa(int(v)) + ")"
	}
}

// Input is the touch panel as seen by the loop.
type Input interface {
	CheckInput()
	Gestures() *mailbox.Queue[pointer.Gesture]
	Grab() error
	Ungrab() error
}

// Player is the command/reply face of the player control actor.
type Player interface {
	Send(cmd player.Command)
	Replies() *mailbox.Queue[player.Reply]
}

// Remote yields at most one remote command per call.
type Remote interface {
	Poll(wait time.Duration) (server.Command, bool)
}

// Options configures a Coordinator.
type Options struct {
	Layout      *Layout
	Sink        render.Sink
	Catalog     *catalog.Catalog // used for the selector preview; may be nil
	AssetsDir   string
	ArtworkPath string
	VolumeFont  string
	PollWait    time.Duration
}

// Coordinator owns the visibility state machine and everything drawn on screen.
// It is single threaded: only the goroutine calling Run or Step touches it.
type Coordinator struct {
	input  Input
	player Player
	remote Remote
	sink   render.Sink
	layout *Layout
	opts   Options

	vis Visibility

	track      model.Track
	trackIndex int
	haveTrack  bool
	length     float64
	lastPos    float64
	paused     bool
	volume     int
	haveVolume bool

	drawnAlbum string
	albumNew   bool

	progress *Progress
	entry    entry
}

// New wires a coordinator. The screen starts hidden.
func New(input Input, p Player, remote Remote, opts Options) *Coordinator {
	if opts.PollWait <= 0 {
		opts.PollWait = defaultPollWait
	}
	return &Coordinator{
		input:      input,
		player:     p,
		remote:     remote,
		sink:       opts.Sink,
		layout:     opts.Layout,
		opts:       opts,
		trackIndex: -1,
		length:     -1,
		paused:     true,
		albumNew:   true,
		progress:   newProgress(opts.Layout.ProgressBar.Width),
	}
}

// Visibility reports the active screen.
func (c *Coordinator) Visibility() Visibility { return c.vis }

// Start asks the player for the state the screens need.
func (c *Coordinator) Start() {
	logger.Info("ui starting", logger.Component("ui"))
	c.player.Send(player.GetCurrentTrack{})
	c.player.Send(player.GetCurrentTrackLength{})
	c.player.Send(player.GetVolume{})
}

// Run loops until ctx is cancelled and gives the panel back on the way out.
func (c *Coordinator) Run(ctx context.Context) error {
	c.Start()
	for {
		select {
		case <-ctx.Done():
			if c.vis != Hidden {
				c.hide()
			}
			logger.Info("ui stopped", logger.Component("ui"))
			return ctx.Err()
		default:
		}
		c.Step()
	}
}

// Step runs one pass: gestures, then replies, then at most one remote command.
func (c *Coordinator) Step() {
	c.input.CheckInput()
	for {
		g, ok := c.input.Gestures().TryRecv()
		if !ok {
			break
		}
		c.dispatch(g)
	}

	for _, r := range coalesce(c.player.Replies().Drain(c.opts.PollWait)) {
		c.process(r)
	}

	if c.remote != nil {
		if cmd, ok := c.remote.Poll(c.opts.PollWait); ok {
			c.command(cmd)
		}
	}
}

func (c *Coordinator) dispatch(g pointer.Gesture) {
	if g.Kind != pointer.PointerOn {
		return
	}
	switch c.vis {
	case MainVisible:
		c.mainGesture(g.X, g.Y)
	case SelectorVisible:
		c.selectorGesture(g.X, g.Y)
	}
}

func (c *Coordinator) mainGesture(x, y int) {
	l := c.layout
	for _, r := range l.mainRegions() {
		if !r.Hit(x, y) {
			continue
		}
		switch r {
		case l.PlayPause:
			c.player.Send(player.Pause{})
		case l.Back5s:
			c.player.Send(player.SeekBackward{})
		case l.Forward5s:
			c.player.Send(player.SeekForward{})
		case l.Prev:
			c.player.Send(player.Prev{})
		case l.Next:
			c.player.Send(player.Next{})
		case l.Close:
			c.hide()
		case l.Volume:
			c.player.Send(player.SetVolume{Volume: l.VolumeAt(x, y)})
		}
		return
	}
}

func (c *Coordinator) selectorGesture(x, y int) {
	l := c.layout
	for i, k := range l.Keys {
		if k.Hit(x, y) {
			if c.entry.press(i + 1) {
				c.drawEntry()
			}
			return
		}
	}
	switch {
	case l.Back.Hit(x, y):
		if c.entry.backspace() {
			c.drawEntry()
		}
	case l.Confirm.Hit(x, y):
		n, ok := c.entry.number()
		if !ok {
			logger.Warn("nothing to confirm",
				logger.Component("ui"),
				logger.String("entry", c.entry.String()))
			return
		}
		c.player.Send(player.SetTrack{Index: n - 1})
		c.hide()
	case l.Close.Hit(x, y):
		c.hide()
	}
}

func (c *Coordinator) process(r player.Reply) {
	switch r := r.(type) {
	case player.CurrentTrack:
		c.trackIndex = r.Index
		c.player.Send(player.GetTrackInfo{Index: r.Index})

	case player.NewTrack:
		c.trackIndex = r.Index
		c.length = -1
		c.lastPos = 0
		c.player.Send(player.GetTrackInfo{Index: r.Index})

	case player.TrackInfo:
		if r.Index != c.trackIndex {
			logger.Debug("stale track info", logger.Component("ui"), logger.Int("index", r.Index))
			return
		}
		c.track = r.Track
		c.haveTrack = true
		if r.Track.Album != c.drawnAlbum {
			c.albumNew = true
		}
		if c.vis == MainVisible {
			c.drawMain(false)
		}

	case player.Length:
		c.length = r.Seconds

	case player.Position:
		c.lastPos = r.Seconds
		if c.vis != MainVisible || c.length <= 0 {
			return
		}
		if span, ok := c.progress.Advance(r.Seconds, c.length); ok {
			bar := c.layout.ProgressBar
			_ = c.sink.Fill(render.Rect{Top: bar.Top, Left: span.Start, Width: span.End - span.Start, Height: bar.Height}, span.Color)
		}

	case player.Paused:
		c.paused = r.Paused
		if c.vis == MainVisible {
			c.drawPlayPause()
		}

	case player.Volume:
		c.volume = r.Volume
		c.haveVolume = true
		if c.vis == MainVisible {
			c.drawVolume()
		}
	}
}

func (c *Coordinator) command(cmd server.Command) {
	switch cmd.Verb {
	case server.VerbUI:
		c.showMain()
	case server.VerbSelect:
		if cmd.HasTrack {
			logger.Info("track number on select is entered on screen instead",
				logger.Component("ui"),
				logger.Int("track", cmd.Track))
		}
		c.showSelector()
	}
}

func (c *Coordinator) showMain() {
	if !c.haveTrack {
		logger.Warn("no current track yet, not opening", logger.Component("ui"))
		return
	}
	c.grab()
	c.vis = MainVisible
	c.player.Send(player.UIOpened{})
	logger.Info("main player visible", logger.Component("ui"))
	c.drawMain(true)
}

func (c *Coordinator) showSelector() {
	if !c.haveTrack {
		logger.Warn("no current track yet, not opening selector", logger.Component("ui"))
		return
	}
	c.grab()
	if c.vis == MainVisible {
		c.player.Send(player.UIHidden{})
	}
	c.vis = SelectorVisible
	c.entry.reset()
	logger.Info("track selector visible", logger.Component("ui"))
	c.drawSelector()
}

func (c *Coordinator) hide() {
	if c.vis == MainVisible {
		c.player.Send(player.UIHidden{})
	}
	c.vis = Hidden
	if err := c.input.Ungrab(); err != nil {
		logger.Warn("ungrab failed", logger.Component("ui"), logger.ErrorField(err))
	}
	logger.Info("ui hidden", logger.Component("ui"))
}

func (c *Coordinator) grab() {
	if err := c.input.Grab(); err != nil {
		logger.Warn("grab failed", logger.Component("ui"), logger.ErrorField(err))
	}
}

// drawMain repaints the player. The cover is only redrawn when forced or when the
// album changed since it was last drawn; otherwise just the strip below it.
func (c *Coordinator) drawMain(forceArt bool) {
	l := c.layout
	art := forceArt || c.albumNew
	if art {
		_ = c.sink.Clear(render.Black)
	} else {
		_ = c.sink.Fill(l.TextStrip, render.Black)
	}
	_ = c.sink.Fill(l.ProgressBar, render.Gray6)
	if art {
		c.drawArtwork()
	}

	_ = c.sink.DrawText(c.track.Title, l.Title)
	if c.track.Artist != "" {
		_ = c.sink.DrawText(c.track.Artist, l.Artist)
	}
	for _, r := range []*Region{l.Prev, l.Back5s, l.Forward5s, l.Next, l.Close} {
		r.draw(c.sink)
	}
	c.drawPlayPause()

	if cursor := c.progress.Rebase(c.lastPos, c.length); cursor > 0 {
		_ = c.sink.Fill(render.Rect{Top: l.ProgressBar.Top, Width: cursor, Height: l.ProgressBar.Height}, render.GrayD)
	}
	if c.haveVolume {
		c.drawVolume()
	}

	c.drawnAlbum = c.track.Album
	c.albumNew = false
}

func (c *Coordinator) drawArtwork() {
	if c.track.HasArtwork() {
		err := utils.WriteFileAtomic(c.opts.ArtworkPath, c.track.Artwork.Data)
		if err == nil {
			_ = c.sink.DrawImage(c.opts.ArtworkPath)
			return
		}
		logger.Warn("cannot store cover art",
			logger.Component("ui"),
			logger.String("path", c.opts.ArtworkPath),
			logger.ErrorField(err))
	}
	_ = c.sink.DrawImage(filepath.Join(c.opts.AssetsDir, "no-album-cover.jpg"))
}

func (c *Coordinator) drawPlayPause() {
	r := c.layout.PlayPause
	label := c.layout.PauseLabel
	if c.paused {
		label = c.layout.PlayLabel
	}
	r.erase(c.sink)
	_ = c.sink.DrawText(label, render.Text{
		Top:   r.Rect.Top,
		Left:  r.Rect.Left,
		Size:  r.Size,
		Style: "regular",
		FG:    render.White,
		BG:    render.Black,
	})
}

func (c *Coordinator) drawVolume() {
	t := c.layout.VolumeText
	t.Font = c.opts.VolumeFont
	_ = c.sink.DrawText(fmt.Sprintf(" Volume %3d ", c.volume), t)
}

func (c *Coordinator) drawSelector() {
	l := c.layout
	_ = c.sink.Clear(render.Black)

	heading := "Select a track"
	if c.opts.Catalog != nil {
		heading = fmt.Sprintf("Select a track (1-%d)", c.opts.Catalog.Len())
	}
	_ = c.sink.DrawText(heading, l.Heading)

	for _, k := range l.Keys {
		k.draw(c.sink)
	}
	l.Back.draw(c.sink)
	l.Confirm.draw(c.sink)
	l.Close.draw(c.sink)
	c.drawEntry()
}

// drawEntry shows the typed number and, when it names a track, its title.
func (c *Coordinator) drawEntry() {
	l := c.layout
	_ = c.sink.Fill(l.Entry, render.Black)
	text := c.entry.String()
	if text == "" {
		return
	}
	if n, ok := c.entry.number(); ok && c.opts.Catalog != nil {
		if t, ok := c.opts.Catalog.Track(n - 1); ok {
			text += "  " + t.Title
		}
	}
	_ = c.sink.DrawText(text, l.EntryText)
}
