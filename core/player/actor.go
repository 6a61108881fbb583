package player

import (
	"context"
	"fmt"
	"time"

	"buck/core/catalog"
	"buck/core/mailbox"
	"buck/logger"
)

const (
	seekStep = 5 // seconds

	defaultPollWait     = 100 * time.Millisecond
	defaultQueryTimeout = 250 * time.Millisecond
	defaultLengthWait   = 3 * time.Second
	defaultReadyTimeout = 10 * time.Second
	defaultSpawnRetry   = 5 * time.Second
	defaultKillWait     = 2 * time.Second
)

// StatusFunc shows a numbered status line to the user.
type StatusFunc func(line int, text string)

// Options tunes the actor. Zero durations fall back to the defaults above.
type Options struct {
	Volume       int
	ReadyMarker  string // substring of a stdout line that means the audio output is up
	ReadyTimeout time.Duration
	SpawnRetry   time.Duration
	PollWait     time.Duration // bounded wait for a command per tick
	QueryTimeout time.Duration // position query budget per tick
	LengthWait   time.Duration
	KillWait     time.Duration
	Keepalive    KeepaliveFactory
	Status       StatusFunc
}

func (o *Options) setDefaults() {
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = defaultReadyTimeout
	}
	if o.SpawnRetry <= 0 {
		o.SpawnRetry = defaultSpawnRetry
	}
	if o.PollWait <= 0 {
		o.PollWait = defaultPollWait
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = defaultQueryTimeout
	}
	if o.LengthWait <= 0 {
		o.LengthWait = defaultLengthWait
	}
	if o.KillWait <= 0 {
		o.KillWait = defaultKillWait
	}
	if o.Volume < 0 {
		o.Volume = 0
	}
	if o.Volume > 100 {
		o.Volume = 100
	}
}

// Actor owns the external player for the selected track. All of its state is
// touched only by the goroutine running Run; other goroutines talk to it through
// the command and reply queues.
type Actor struct {
	catalog  *catalog.Catalog
	launcher Launcher
	opts     Options

	commands *mailbox.Queue[Command]
	replies  *mailbox.Queue[Reply]

	session   *Session
	current   int
	volume    int
	paused    bool
	launched  bool
	uiOpen    bool
	keepalive Keepalive
}

// NewActor validates the catalog and prepares an actor that starts on track 0.
func NewActor(cat *catalog.Catalog, launcher Launcher, opts Options) (*Actor, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	opts.setDefaults()
	return &Actor{
		catalog:  cat,
		launcher: launcher,
		opts:     opts,
		commands: mailbox.New[Command](),
		replies:  mailbox.New[Reply](),
		volume:   opts.Volume,
	}, nil
}

// Send queues a command. It never blocks.
func (a *Actor) Send(cmd Command) {
	a.commands.Send(cmd)
}

// Replies is the outgoing queue read by the ui.
func (a *Actor) Replies() *mailbox.Queue[Reply] {
	return a.replies
}

// Run spawns the first session and loops until ctx is cancelled.
// The player is killed and the keepalive released on every exit path.
func (a *Actor) Run(ctx context.Context) error {
	defer a.shutdown()

	logger.Info("player control starting",
		logger.Component("player-control"),
		logger.Int("tracks", a.catalog.Len()))

	if err := a.spawn(ctx, a.current); err != nil {
		return err
	}

	logger.Info("entering event loop", logger.Component("player-control"))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.tick(ctx); err != nil {
			return err
		}
	}
}

// tick services at most one command, auto-advances a finished session and polls the position.
func (a *Actor) tick(ctx context.Context) error {
	if cmd, ok := a.commands.RecvTimeout(a.opts.PollWait); ok {
		if err := a.handle(ctx, cmd); err != nil {
			return err
		}
	}

	if a.session.exited() {
		next := a.catalog.Next(a.current)
		logger.Info("track finished, advancing",
			logger.Component("player-control"),
			logger.Int("index", next))
		return a.switchTo(ctx, next)
	}

	if !a.paused {
		if pos, ok := a.session.query(cmdGetPos, ansPosition, a.opts.QueryTimeout); ok {
			a.replies.Send(Position{Seconds: pos})
		}
	}
	return nil
}

func (a *Actor) handle(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case Pause:
		next := !a.paused
		a.write(cmdPause)
		a.setPaused(next)

	case SeekForward:
		a.write(fmt.Sprintf("seek %d 0", seekStep))
		a.setPaused(false)

	case SeekBackward:
		a.write(fmt.Sprintf("seek %d 0", -seekStep))
		a.setPaused(false)

	case Next:
		return a.switchTo(ctx, a.catalog.Next(a.current))

	case Prev:
		return a.switchTo(ctx, a.catalog.Prev(a.current))

	case SetTrack:
		if c.Index < 0 || c.Index >= a.catalog.Len() {
			logger.Warn("track number out of range, ignoring",
				logger.Component("player-control"),
				logger.Int("index", c.Index),
				logger.Int("tracks", a.catalog.Len()))
			return nil
		}
		return a.switchTo(ctx, c.Index)

	case SetVolume:
		v := max(0, min(100, c.Volume))
		a.volume = v
		a.write(fmt.Sprintf("volume %d 1", v))
		a.setPaused(false)
		a.replies.Send(Volume{Volume: v})

	case GetVolume:
		a.replies.Send(Volume{Volume: a.volume})

	case GetCurrentTrack:
		a.replies.Send(CurrentTrack{Index: a.current})

	case GetCurrentTrackLength:
		if a.session != nil && a.session.Length >= 0 {
			a.replies.Send(Length{Seconds: a.session.Length})
		}

	case GetTrackInfo:
		t, ok := a.catalog.Track(c.Index)
		if !ok {
			logger.Warn("track info requested out of range",
				logger.Component("player-control"),
				logger.Int("index", c.Index))
			return nil
		}
		a.replies.Send(TrackInfo{Index: c.Index, Track: t})

	case UIOpened:
		a.uiOpen = true
		a.reconcileKeepalive()

	case UIHidden:
		a.uiOpen = false
		a.reconcileKeepalive()

	default:
		logger.Warn("unknown command",
			logger.Component("player-control"),
			logger.Any("command", fmt.Sprintf("%T", cmd)))
	}
	return nil
}

// switchTo tears the current session down before installing the new one.
func (a *Actor) switchTo(ctx context.Context, index int) error {
	if a.session != nil {
		logger.Info("removing old player",
			logger.Component("player-control"),
			logger.String("session", a.session.ID),
			logger.Int("from", a.current),
			logger.Int("to", index))
		a.session.close(a.opts.KillWait)
		a.session = nil
	}
	return a.spawn(ctx, index)
}

// spawn launches the player for index, retrying until the audio output comes up or ctx ends.
// The first launch of the process lifetime starts paused; later ones play at once.
func (a *Actor) spawn(ctx context.Context, index int) error {
	track, _ := a.catalog.Track(index)

	var s *Session
	for attempt := 1; ; attempt++ {
		var err error
		s, err = startSession(a.launcher, index, track, a.volume, a.opts.ReadyMarker, a.opts.ReadyTimeout)
		if err == nil {
			break
		}
		logger.Warn("player failed to start, retrying",
			logger.Component("player-control"),
			logger.Int("attempt", attempt),
			logger.String("path", track.Path),
			logger.Duration("retry", a.opts.SpawnRetry),
			logger.ErrorField(err))
		a.status(5, fmt.Sprintf("* Waiting for audio output (attempt %d)...", attempt))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.opts.SpawnRetry):
		}
	}

	a.session = s
	a.current = index
	first := !a.launched
	a.launched = true

	logger.Info("player session started",
		logger.Component("player-control"),
		logger.String("session", s.ID),
		logger.Int("index", index),
		logger.String("title", track.Title))
	a.replies.Send(NewTrack{Index: index})

	if length, ok := s.query(cmdGetLength, ansLength, a.opts.LengthWait); ok {
		s.Length = length
		logger.Debug("track length",
			logger.Component("player-control"),
			logger.String("session", s.ID),
			logger.Float64("seconds", length))
		a.replies.Send(Length{Seconds: length})
	} else {
		logger.Warn("no length reported",
			logger.Component("player-control"),
			logger.String("session", s.ID))
	}

	if first {
		a.write(cmdPause)
		a.setPaused(true)
	} else {
		a.setPaused(false)
	}
	return nil
}

func (a *Actor) write(cmd string) {
	if a.session == nil {
		return
	}
	if err := a.session.send(cmd); err != nil {
		logger.Warn("player command not delivered",
			logger.Component("player-control"),
			logger.String("session", a.session.ID),
			logger.ErrorField(err))
		return
	}
	logger.Debug("mplayer command",
		logger.Component("player-control"),
		logger.String("cmd", cmd))
}

func (a *Actor) setPaused(v bool) {
	a.paused = v
	a.replies.Send(Paused{Paused: v})
	a.reconcileKeepalive()
}

// reconcileKeepalive holds the helper exactly while the ui is open and playback is paused.
func (a *Actor) reconcileKeepalive() {
	want := a.uiOpen && a.paused && a.opts.Keepalive != nil
	switch {
	case want && a.keepalive == nil:
		k, err := a.opts.Keepalive()
		if err != nil {
			logger.Warn("keepalive unavailable",
				logger.Component("player-control"),
				logger.ErrorField(err))
			return
		}
		a.keepalive = k
	case !want && a.keepalive != nil:
		a.keepalive.Release()
		a.keepalive = nil
	}
}

func (a *Actor) status(line int, text string) {
	if a.opts.Status != nil {
		a.opts.Status(line, text)
	}
}

func (a *Actor) shutdown() {
	if a.session != nil {
		a.session.close(a.opts.KillWait)
		a.session = nil
	}
	if a.keepalive != nil {
		a.keepalive.Release()
		a.keepalive = nil
	}
	logger.Info("player control stopped", logger.Component("player-control"))
}
