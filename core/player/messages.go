package player

import "buck/model"

// Command flows into the actor. The set is closed: only the types below implement it.
type Command interface {
	command()
}

// Reply flows out of the actor towards the ui.
type Reply interface {
	reply()
}

// Pause toggles playback.
type Pause struct{}

// SeekForward jumps five seconds ahead and resumes.
type SeekForward struct{}

// SeekBackward jumps five seconds back and resumes.
type SeekBackward struct{}

// Next switches to the following track, wrapping at the end.
type Next struct{}

// Prev switches to the preceding track, wrapping at the start.
type Prev struct{}

// SetVolume sets the output volume (0-100) and resumes.
type SetVolume struct{ Volume int }

// SetTrack switches to an explicit catalog index. Out-of-range indices are ignored.
type SetTrack struct{ Index int }

type GetVolume struct{}

type GetCurrentTrack struct{}

type GetCurrentTrackLength struct{}

type GetTrackInfo struct{ Index int }

// UIOpened and UIHidden bound the lifetime of the output keepalive helper.
type UIOpened struct{}

type UIHidden struct{}

func (Pause) command()                 {}
func (SeekForward) command()           {}
func (SeekBackward) command()          {}
func (Next) command()                  {}
func (Prev) command()                  {}
func (SetVolume) command()             {}
func (SetTrack) command()              {}
func (GetVolume) command()             {}
func (GetCurrentTrack) command()       {}
func (GetCurrentTrackLength) command() {}
func (GetTrackInfo) command()          {}
func (UIOpened) command()              {}
func (UIHidden) command()              {}

// CurrentTrack answers GetCurrentTrack.
type CurrentTrack struct{ Index int }

// NewTrack is emitted whenever a session for a track is installed.
type NewTrack struct{ Index int }

// TrackInfo answers GetTrackInfo.
type TrackInfo struct {
	Index int
	Track model.Track
}

type Volume struct{ Volume int }

// Length is the song length in seconds.
type Length struct{ Seconds float64 }

// Position is the playback position in seconds.
type Position struct{ Seconds float64 }

type Paused struct{ Paused bool }

func (CurrentTrack) reply() {}
func (NewTrack) reply()     {}
func (TrackInfo) reply()    {}
func (Volume) reply()       {}
func (Length) reply()       {}
func (Position) reply()     {}
func (Paused) reply()       {}
