package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"buck/core/catalog"
	"buck/core/mailbox"
	"buck/core/player"
	"buck/core/pointer"
	"buck/core/render"
	"buck/model"
	"buck/server"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeInput struct {
	gestures *mailbox.Queue[pointer.Gesture]
	grabs    int
	ungrabs  int
}

func (f *fakeInput) CheckInput()                               {}
func (f *fakeInput) Gestures() *mailbox.Queue[pointer.Gesture] { return f.gestures }
func (f *fakeInput) Grab() error                               { f.grabs++; return nil }
func (f *fakeInput) Ungrab() error                             { f.ungrabs++; return nil }

type fakePlayer struct {
	sent    []player.Command
	replies *mailbox.Queue[player.Reply]
}

func (f *fakePlayer) Send(cmd player.Command)               { f.sent = append(f.sent, cmd) }
func (f *fakePlayer) Replies() *mailbox.Queue[player.Reply] { return f.replies }

func (f *fakePlayer) take() []player.Command {
	out := f.sent
	f.sent = nil
	return out
}

type fakeRemote struct{ cmds []server.Command }

func (f *fakeRemote) Poll(time.Duration) (server.Command, bool) {
	if len(f.cmds) == 0 {
		return server.Command{}, false
	}
	c := f.cmds[0]
	f.cmds = f.cmds[1:]
	return c, true
}

type recSink struct{ ops []string }

func (s *recSink) Clear(color string) error {
	s.ops = append(s.ops, "clear "+color)
	return nil
}

func (s *recSink) Fill(r render.Rect, color string) error {
	s.ops = append(s.ops, "fill "+r.String()+" "+color)
	return nil
}

func (s *recSink) DrawText(text string, _ render.Text) error {
	s.ops = append(s.ops, "text "+text)
	return nil
}

func (s *recSink) DrawImage(path string) error {
	s.ops = append(s.ops, "image "+path)
	return nil
}

func (s *recSink) Status(line int, text string) error {
	s.ops = append(s.ops, "status "+strconv.Itoa(line)+" "+text)
	return nil
}

func (s *recSink) take() []string {
	out := s.ops
	s.ops = nil
	return out
}

type harness struct {
	c      *Coordinator
	clock  *fakeClock
	input  *fakeInput
	player *fakePlayer
	remote *fakeRemote
	sink   *recSink
	assets string
}

func testTracks(n int) []model.Track {
	tracks := make([]model.Track, n)
	for i := range tracks {
		tracks[i] = model.Track{
			Path:   fmt.Sprintf("/music/%02d.mp3", i),
			Title:  fmt.Sprintf("Song %d", i+1),
			Artist: "Artist",
			Album:  "Album",
		}
	}
	return tracks
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:  &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		input:  &fakeInput{gestures: mailbox.New[pointer.Gesture]()},
		player: &fakePlayer{replies: mailbox.New[player.Reply]()},
		remote: &fakeRemote{},
		sink:   &recSink{},
		assets: t.TempDir(),
	}
	h.c = New(h.input, h.player, h.remote, Options{
		Layout:      NewLayout(600, 800, 1, h.clock.now),
		Sink:        h.sink,
		Catalog:     catalog.New(testTracks(12)),
		AssetsDir:   h.assets,
		ArtworkPath: filepath.Join(t.TempDir(), "art"),
		VolumeFont:  "/fonts/L.otf",
		PollWait:    time.Millisecond,
	})
	// let every region leave its initial debounce window
	h.clock.advance(time.Second)
	return h
}

func (h *harness) reply(rs ...player.Reply) {
	for _, r := range rs {
		h.player.replies.Send(r)
	}
	h.c.Step()
}

// knowTrack feeds the replies the coordinator needs before it will open.
func (h *harness) knowTrack(index int, track model.Track) {
	h.reply(player.CurrentTrack{Index: index})
	h.reply(player.TrackInfo{Index: index, Track: track})
	h.player.take()
	h.sink.take()
}

func (h *harness) remoteCmd(c server.Command) {
	h.remote.cmds = append(h.remote.cmds, c)
	h.c.Step()
}

func (h *harness) tap(x, y int) {
	h.clock.advance(250 * time.Millisecond)
	h.input.gestures.Send(pointer.Gesture{Kind: pointer.PointerOn, X: x, Y: y})
	h.c.Step()
}

func (h *harness) openMain(t *testing.T) {
	t.Helper()
	h.knowTrack(0, testTracks(1)[0])
	h.remoteCmd(server.Command{Verb: server.VerbUI})
	if h.c.Visibility() != MainVisible {
		t.Fatalf("visibility = %v, want main", h.c.Visibility())
	}
	h.player.take()
	h.sink.take()
}

func TestStartSendsInitialQueries(t *testing.T) {
	h := newHarness(t)
	h.c.Start()
	want := []player.Command{player.GetCurrentTrack{}, player.GetCurrentTrackLength{}, player.GetVolume{}}
	if diff := cmp.Diff(want, h.player.take()); diff != "" {
		t.Errorf("initial queries mismatch (-want +got):\n%s", diff)
	}
}

func TestUINeedsKnownTrack(t *testing.T) {
	h := newHarness(t)
	h.remoteCmd(server.Command{Verb: server.VerbUI})
	if h.c.Visibility() != Hidden {
		t.Errorf("visibility = %v, want hidden", h.c.Visibility())
	}
	if h.input.grabs != 0 {
		t.Errorf("grabs = %d, want 0", h.input.grabs)
	}
}

func TestOpenAndCloseMain(t *testing.T) {
	h := newHarness(t)
	h.knowTrack(0, testTracks(1)[0])

	h.remoteCmd(server.Command{Verb: server.VerbUI})

	if h.c.Visibility() != MainVisible || h.input.grabs != 1 {
		t.Fatalf("visibility = %v grabs = %d", h.c.Visibility(), h.input.grabs)
	}
	if diff := cmp.Diff([]player.Command{player.UIOpened{}}, h.player.take()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	ops := h.sink.take()
	wantPrefix := []string{
		"clear BLACK",
		"fill top=600,left=0,width=600,height=10 GRAY6",
		"image " + filepath.Join(h.assets, "no-album-cover.jpg"),
		"text Song 1",
		"text Artist",
	}
	if diff := cmp.Diff(wantPrefix, ops[:len(wantPrefix)]); diff != "" {
		t.Errorf("draw ops mismatch (-want +got):\n%s", diff)
	}

	h.tap(580, 780) // close
	if h.c.Visibility() != Hidden || h.input.ungrabs != 1 {
		t.Errorf("after close visibility = %v ungrabs = %d", h.c.Visibility(), h.input.ungrabs)
	}
	if diff := cmp.Diff([]player.Command{player.UIHidden{}}, h.player.take()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestGesturesIgnoredWhileHidden(t *testing.T) {
	h := newHarness(t)
	h.knowTrack(0, testTracks(1)[0])
	h.tap(560, 650)
	if got := h.player.take(); len(got) != 0 {
		t.Errorf("commands = %v, want none", got)
	}
}

func TestMainRegions(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want player.Command
	}{
		{"play/pause", 305, 650, player.Pause{}},
		{"back 5s", 220, 650, player.SeekBackward{}},
		{"forward 5s", 350, 650, player.SeekForward{}},
		{"previous", 50, 650, player.Prev{}},
		{"next", 570, 650, player.Next{}},
		{"volume middle", 300, 100, player.SetVolume{Volume: 50}},
		{"volume clamps left", 10, 100, player.SetVolume{Volume: 0}},
		{"volume clamps right", 590, 100, player.SetVolume{Volume: 100}},
		{"volume quarter", 200, 399, player.SetVolume{Volume: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.openMain(t)
			h.tap(tt.x, tt.y)
			if diff := cmp.Diff([]player.Command{tt.want}, h.player.take()); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDebounce(t *testing.T) {
	h := newHarness(t)
	h.openMain(t)

	tap := func() {
		h.input.gestures.Send(pointer.Gesture{Kind: pointer.PointerOn, X: 570, Y: 650})
		h.c.Step()
	}

	tap()
	h.clock.advance(150 * time.Millisecond)
	tap()
	if got := len(h.player.take()); got != 1 {
		t.Errorf("hits within 200ms = %d, want 1", got)
	}

	h.clock.advance(200 * time.Millisecond)
	tap()
	if got := len(h.player.take()); got != 1 {
		t.Errorf("hits after 200ms = %d, want 1", got)
	}
}

func TestPointerOffHasNoAction(t *testing.T) {
	h := newHarness(t)
	h.openMain(t)
	h.clock.advance(time.Second)
	h.input.gestures.Send(pointer.Gesture{Kind: pointer.PointerOff, X: 570, Y: 650})
	h.c.Step()
	if got := h.player.take(); len(got) != 0 {
		t.Errorf("commands = %v, want none", got)
	}
}

func TestDisabledSeek(t *testing.T) {
	h := newHarness(t)
	h.c.layout.DisableSeek()
	h.openMain(t)
	h.tap(220, 650)
	h.tap(350, 650)
	if got := h.player.take(); len(got) != 0 {
		t.Errorf("commands = %v, want none", got)
	}
}

func TestTrackIdentityQueriesInfo(t *testing.T) {
	h := newHarness(t)
	h.reply(player.CurrentTrack{Index: 2}, player.NewTrack{Index: 5})
	want := []player.Command{player.GetTrackInfo{Index: 5}}
	if diff := cmp.Diff(want, h.player.take()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	// info for a track that is no longer current is dropped
	h.reply(player.TrackInfo{Index: 2, Track: model.Track{Title: "old"}})
	if h.c.haveTrack {
		t.Error("stale track info was accepted")
	}
}

func TestRepliesDrawOnlyWhenVisible(t *testing.T) {
	h := newHarness(t)
	h.knowTrack(0, testTracks(1)[0])
	h.reply(player.Length{Seconds: 100}, player.Position{Seconds: 50}, player.Paused{Paused: false}, player.Volume{Volume: 40})
	if ops := h.sink.take(); len(ops) != 0 {
		t.Errorf("hidden draw ops = %v, want none", ops)
	}

	h.remoteCmd(server.Command{Verb: server.VerbUI})
	ops := h.sink.take()
	for _, want := range []string{
		"fill top=600,left=0,width=300,height=10 GRAYD",
		"text " + h.c.layout.PauseLabel,
		"text  Volume  40 ",
	} {
		if !containsOp(ops, want) {
			t.Errorf("open draw ops %v missing %q", ops, want)
		}
	}

	h.reply(player.Position{Seconds: 50.5})
	if ops := h.sink.take(); len(ops) != 0 {
		t.Errorf("sub-threshold position drew %v", ops)
	}
	h.reply(player.Position{Seconds: 52})
	want := []string{"fill top=600,left=300,width=12,height=10 GRAYD"}
	if diff := cmp.Diff(want, h.sink.take()); diff != "" {
		t.Errorf("progress ops mismatch (-want +got):\n%s", diff)
	}

	h.reply(player.Position{Seconds: 10})
	want = []string{"fill top=600,left=60,width=252,height=10 GRAY6"}
	if diff := cmp.Diff(want, h.sink.take()); diff != "" {
		t.Errorf("seek back ops mismatch (-want +got):\n%s", diff)
	}

	h.reply(player.Paused{Paused: true})
	want = []string{
		"fill top=635,left=291,width=40,height=40 BLACK",
		"text " + h.c.layout.PlayLabel,
	}
	if diff := cmp.Diff(want, h.sink.take()); diff != "" {
		t.Errorf("paused ops mismatch (-want +got):\n%s", diff)
	}
}

func TestAlbumArtOnlyForNewAlbum(t *testing.T) {
	h := newHarness(t)
	first := model.Track{Title: "A1", Album: "A", Artwork: &model.Artwork{Data: []byte("jpeg")}}
	h.knowTrack(0, first)
	h.remoteCmd(server.Command{Verb: server.VerbUI})
	ops := h.sink.take()
	if !containsOp(ops, "image "+h.c.opts.ArtworkPath) {
		t.Fatalf("ops %v do not draw the embedded cover", ops)
	}
	data, err := os.ReadFile(h.c.opts.ArtworkPath)
	if err != nil || string(data) != "jpeg" {
		t.Errorf("artwork file = %q, %v", data, err)
	}

	// same album: only the text strip is repainted
	h.reply(player.NewTrack{Index: 1})
	h.reply(player.TrackInfo{Index: 1, Track: model.Track{Title: "A2", Album: "A"}})
	ops = h.sink.take()
	if containsOp(ops, "clear BLACK") || ops[0] != "fill top=600,left=0,width=600,height=200 BLACK" {
		t.Errorf("same-album redraw ops = %v", ops)
	}

	// new album: full clear and placeholder cover
	h.reply(player.NewTrack{Index: 2})
	h.reply(player.TrackInfo{Index: 2, Track: model.Track{Title: "B1", Album: "B"}})
	ops = h.sink.take()
	if ops[0] != "clear BLACK" || !containsOp(ops, "image "+filepath.Join(h.assets, "no-album-cover.jpg")) {
		t.Errorf("new-album redraw ops = %v", ops)
	}
}

func TestSelectorConfirmWithoutDigits(t *testing.T) {
	h := newHarness(t)
	h.knowTrack(0, testTracks(1)[0])
	h.remoteCmd(server.Command{Verb: server.VerbSelect})
	if h.c.Visibility() != SelectorVisible {
		t.Fatalf("visibility = %v, want selector", h.c.Visibility())
	}

	h.tap(500, 620) // confirm
	if got := h.player.take(); len(got) != 0 {
		t.Errorf("commands = %v, want none", got)
	}
	if h.c.Visibility() != SelectorVisible {
		t.Errorf("confirm with empty entry left the selector: %v", h.c.Visibility())
	}

	h.tap(580, 780) // close
	if h.c.Visibility() != Hidden {
		t.Errorf("visibility = %v, want hidden", h.c.Visibility())
	}
	if got := h.player.take(); len(got) != 0 {
		t.Errorf("closing the selector sent %v", got)
	}
}

func TestSelectorEntersTrack(t *testing.T) {
	h := newHarness(t)
	h.knowTrack(0, testTracks(1)[0])
	h.remoteCmd(server.Command{Verb: server.VerbSelect, Track: 7, HasTrack: true})
	h.sink.take()

	h.tap(100, 260) // 1
	h.tap(500, 260) // 3
	h.tap(100, 620) // backspace
	h.tap(300, 620) // tenth key enters 0
	if got := h.c.entry.String(); got != "10" {
		t.Fatalf("entry = %q, want 10", got)
	}
	ops := h.sink.take()
	if last := ops[len(ops)-1]; last != "text 10  Song 10" {
		t.Errorf("last entry draw = %q", last)
	}

	h.tap(500, 620) // confirm
	if diff := cmp.Diff([]player.Command{player.SetTrack{Index: 9}}, h.player.take()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if h.c.Visibility() != Hidden || h.input.ungrabs != 1 {
		t.Errorf("visibility = %v ungrabs = %d", h.c.Visibility(), h.input.ungrabs)
	}
}

func TestSelectFromMain(t *testing.T) {
	h := newHarness(t)
	h.openMain(t)
	h.remoteCmd(server.Command{Verb: server.VerbSelect})
	if h.c.Visibility() != SelectorVisible {
		t.Fatalf("visibility = %v", h.c.Visibility())
	}
	if diff := cmp.Diff([]player.Command{player.UIHidden{}}, h.player.take()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	// main-player regions do not act in the selector
	h.tap(300, 100)
	if got := h.player.take(); len(got) != 0 {
		t.Errorf("commands = %v, want none", got)
	}
}

func TestCoalesce(t *testing.T) {
	batch := []player.Reply{
		player.Position{Seconds: 1},
		player.Paused{Paused: true},
		player.Volume{Volume: 10},
		player.Position{Seconds: 2},
		player.CurrentTrack{Index: 3},
		player.TrackInfo{Index: 3},
		player.Paused{Paused: false},
		player.NewTrack{Index: 4},
		player.Length{Seconds: 100},
		player.Volume{Volume: 11},
	}
	want := []player.Reply{
		player.Volume{Volume: 10},
		player.TrackInfo{Index: 3},
		player.Volume{Volume: 11},
		player.NewTrack{Index: 4},
		player.Length{Seconds: 100},
		player.Position{Seconds: 2},
		player.Paused{Paused: false},
	}
	if diff := cmp.Diff(want, coalesce(batch)); diff != "" {
		t.Errorf("coalesce mismatch (-want +got):\n%s", diff)
	}
	if got := coalesce(nil); len(got) != 0 {
		t.Errorf("coalesce(nil) = %v", got)
	}
}

func TestCoalescingIdempotence(t *testing.T) {
	batch := []player.Reply{
		player.Length{Seconds: 120},
		player.Position{Seconds: 10},
		player.Paused{Paused: false},
		player.Position{Seconds: 30},
		player.Paused{Paused: true},
		player.Position{Seconds: 60},
		player.Paused{Paused: false},
	}

	run := func(replies []player.Reply) ([]string, *Coordinator) {
		h := newHarness(t)
		h.openMain(t)
		h.reply(replies...)
		return h.sink.take(), h.c
	}

	fullOps, full := run(batch)
	keptOps, kept := run(coalesce(batch))
	if diff := cmp.Diff(fullOps, keptOps); diff != "" {
		t.Errorf("draw ops differ (-full +kept):\n%s", diff)
	}
	if full.paused != kept.paused || full.lastPos != kept.lastPos || full.progress.Cursor() != kept.progress.Cursor() {
		t.Errorf("state differs: full=(%v %v %d) kept=(%v %v %d)",
			full.paused, full.lastPos, full.progress.Cursor(),
			kept.paused, kept.lastPos, kept.progress.Cursor())
	}
}

func TestProgressRoundTrip(t *testing.T) {
	for _, width := range []int{600, 601, 758} {
		t.Run(strconv.Itoa(width), func(t *testing.T) {
			p := newProgress(width)
			const length = 240.0
			next := 0
			for pos := 0.0; pos <= length; pos += 0.25 {
				s, ok := p.Advance(pos, length)
				if !ok {
					continue
				}
				if s.Start != next || s.End <= s.Start || s.Color != render.GrayD {
					t.Fatalf("pos %.2f: span %+v, want forward span from %d", pos, s, next)
				}
				next = s.End
			}
			if next != width {
				t.Errorf("covered [0,%d), want [0,%d)", next, width)
			}
		})
	}
}

func TestProgressQuantization(t *testing.T) {
	p := newProgress(600)
	if _, ok := p.Advance(0.9, 100); ok {
		t.Error("movement below one cell issued a span")
	}
	s, ok := p.Advance(1, 100)
	if !ok || s != (Span{Start: 0, End: 6, Color: render.GrayD}) {
		t.Errorf("Advance = %+v, %v", s, ok)
	}
	s, ok = p.Advance(0, 100)
	if !ok || s != (Span{Start: 0, End: 6, Color: render.Gray6}) {
		t.Errorf("backward Advance = %+v, %v", s, ok)
	}
	if got := p.Rebase(50, 100); got != 300 {
		t.Errorf("Rebase = %d, want 300", got)
	}
	if got := p.Rebase(10, 0); got != 0 {
		t.Errorf("Rebase with unknown length = %d, want 0", got)
	}
}

func TestRegionDebounceAndDisabled(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	r := newRegion(render.Rect{Top: 10, Left: 10, Width: 20, Height: 20}, "x", 12, clock.now)

	if r.Hit(15, 15) {
		t.Error("hit inside the initial debounce window")
	}
	clock.advance(debounceWindow)
	if !r.Hit(15, 15) {
		t.Error("miss after the debounce window")
	}
	clock.advance(debounceWindow - time.Millisecond)
	if r.Hit(15, 15) {
		t.Error("second hit within 200ms registered")
	}
	clock.advance(debounceWindow)
	if r.Hit(50, 50) {
		t.Error("hit outside the rectangle")
	}
	clock.advance(debounceWindow)
	r.Disabled = true
	if r.Hit(15, 15) {
		t.Error("disabled region collided")
	}
	if x, y := r.Local(25, 12); x != 15 || y != 2 {
		t.Errorf("Local = (%d, %d), want (15, 2)", x, y)
	}
}

func TestEntry(t *testing.T) {
	var e entry
	if _, ok := e.number(); ok {
		t.Error("empty entry parsed")
	}
	e.press(10)
	if _, ok := e.number(); ok {
		t.Error("entry 0 parsed as a track number")
	}
	e.reset()
	for _, k := range []int{1, 2, 3, 4, 5, 6} {
		e.press(k)
	}
	if e.String() != "12345" {
		t.Errorf("entry = %q, want it capped at five digits", e.String())
	}
	e.backspace()
	if n, ok := e.number(); !ok || n != 1234 {
		t.Errorf("number = %d, %v", n, ok)
	}
}

func TestVisibilityString(t *testing.T) {
	if Hidden.String() != "hidden" || MainVisible.String() != "main" || SelectorVisible.String() != "selector" {
		t.Error("unexpected visibility names")
	}
}

func containsOp(ops []string, want string) bool {
	for _, op := range ops {
		if op == want {
			return true
		}
	}
	return false
}
