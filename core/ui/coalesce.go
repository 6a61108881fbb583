package ui

import "buck/core/player"

// coalesce keeps only the last track-identity, length, position and paused reply of
// a drained batch. Every other reply keeps its arrival order; the kept coalesced
// ones follow in that fixed kind order.
func coalesce(batch []player.Reply) []player.Reply {
	var track, length, pos, paused player.Reply
	out := make([]player.Reply, 0, len(batch))
	for _, r := range batch {
		switch r.(type) {
		case player.CurrentTrack, player.NewTrack:
			track = r
		case player.Length:
			length = r
		case player.Position:
			pos = r
		case player.Paused:
			paused = r
		default:
			out = append(out, r)
		}
	}
	for _, r := range []player.Reply{track, length, pos, paused} {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
