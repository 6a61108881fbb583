package player

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"buck/core/mailbox"
	"buck/logger"
	"buck/model"

	"github.com/google/uuid"
)

// Answer prefixes and commands of the mplayer slave protocol.
const (
	ansLength   = "ANS_LENGTH="
	ansPosition = "ANS_TIME_POSITION="

	cmdPause     = "pause"
	cmdGetLength = "get_time_length"
	cmdGetPos    = "get_time_pos"
)

var (
	errExited       = errors.New("player exited before it was ready")
	errReadyTimeout = errors.New("player did not become ready in time")
)

// Session is one live player process for one track, plus its pipes and the cached length.
// It is replaced wholesale on every track change.
type Session struct {
	ID     string
	Index  int
	Length float64 // seconds, negative while unknown

	proc  Process
	lines *mailbox.Queue[string]
	eof   chan struct{}
}

func newSession(proc Process, index int) *Session {
	s := &Session{
		ID:     uuid.New().String(),
		Index:  index,
		Length: -1,
		proc:   proc,
		lines:  mailbox.New[string](),
		eof:    make(chan struct{}),
	}
	go s.pump()
	return s
}

// pump copies stdout lines into the session's queue until the pipe closes.
func (s *Session) pump() {
	defer close(s.eof)
	sc := bufio.NewScanner(s.proc.Stdout())
	for sc.Scan() {
		s.lines.Send(strings.TrimRight(sc.Text(), "\r"))
	}
}

// waitReady blocks until a stdout line contains marker. An empty marker is ready at once.
func (s *Session) waitReady(marker string, timeout time.Duration) error {
	if marker == "" {
		return nil
	}
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return errReadyTimeout
		}
		line, ok := s.lines.RecvTimeout(min(remaining, 50*time.Millisecond))
		if ok {
			if strings.Contains(line, marker) {
				return nil
			}
			continue
		}
		if s.outputClosed() {
			return errExited
		}
	}
}

func (s *Session) outputClosed() bool {
	select {
	case <-s.eof:
		return s.lines.Len() == 0
	default:
		return false
	}
}

// exited reports whether the process ended on its own (or was killed).
func (s *Session) exited() bool {
	select {
	case <-s.proc.Done():
		return true
	default:
		return false
	}
}

func (s *Session) send(cmd string) error {
	if _, err := io.WriteString(s.proc.Stdin(), cmd+"\n"); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	return nil
}

// query writes cmd and waits up to timeout for a line starting with prefix whose
// remainder parses as a number. Lines left over from earlier queries are discarded first.
func (s *Session) query(cmd, prefix string, timeout time.Duration) (float64, bool) {
	for {
		if _, ok := s.lines.TryRecv(); !ok {
			break
		}
	}
	if err := s.send(cmd); err != nil {
		return 0, false
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, false
		}
		line, ok := s.lines.RecvTimeout(remaining)
		if !ok {
			return 0, false
		}
		if v, ok := parseAnswer(line, prefix); ok {
			return v, true
		}
	}
}

// parseAnswer matches "PREFIX=<number>" lines; anything else is ignored.
func parseAnswer(line, prefix string) (float64, bool) {
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, prefix)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// close kills the process and waits up to wait for it to go away.
func (s *Session) close(wait time.Duration) {
	if err := s.proc.Kill(); err != nil {
		logger.Warn("failed to kill player",
			logger.Component("player-control"),
			logger.String("session", s.ID),
			logger.ErrorField(err))
	}
	select {
	case <-s.proc.Done():
	case <-time.After(wait):
		logger.Warn("player did not terminate in time",
			logger.Component("player-control"),
			logger.String("session", s.ID),
			logger.Duration("wait", wait))
	}
}

// startSession launches a player and waits for its ready marker.
func startSession(l Launcher, index int, track model.Track, volume int, marker string, readyTimeout time.Duration) (*Session, error) {
	proc, err := l.Launch(track, volume)
	if err != nil {
		return nil, err
	}
	s := newSession(proc, index)
	if err := s.waitReady(marker, readyTimeout); err != nil {
		s.close(time.Second)
		return nil, err
	}
	return s, nil
}
