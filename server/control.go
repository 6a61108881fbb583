// Package server is the local remote-control socket of the daemon and the client
// used by the ui/select subcommands.
package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"buck/logger"
)

// Verb is the action a remote command asks for.
type Verb int

const (
	VerbUI Verb = iota
	VerbSelect
)

func (v Verb) String() string {
	switch v {
	case VerbUI:
		return "ui"
	case VerbSelect:
		return "select"
	default:
		return "Verb(" + strconv.Itoa(int(v)) + ")"
	}
}

// Command is one parsed socket payload.
type Command struct {
	Verb     Verb
	Track    int // 1-based, only meaningful with HasTrack
	HasTrack bool
}

// ParseCommand understands "ui", "select" and "select <n>". Anything else is rejected.
func ParseCommand(payload string) (Command, bool) {
	p := strings.TrimSpace(payload)
	switch {
	case strings.HasPrefix(p, "select"):
		c := Command{Verb: VerbSelect}
		if arg := strings.TrimSpace(strings.TrimPrefix(p, "select")); arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return Command{}, false
			}
			c.Track, c.HasTrack = n, true
		}
		return c, true
	case strings.HasPrefix(p, "ui"):
		return Command{Verb: VerbUI}, true
	default:
		return Command{}, false
	}
}

// maxPayload caps how much of a connection is read.
const maxPayload = 4096

// Listener serves one connection at a time and never blocks the caller for
// longer than the wait it is given.
type Listener struct {
	path        string
	ln          *net.UnixListener
	readTimeout time.Duration
}

// Listen removes a stale socket file at path and binds a fresh one.
func Listen(path string) (*Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("bind control socket %s: %w", path, err)
	}
	logger.Info("control socket listening",
		logger.Component("control-socket"),
		logger.String("path", path))
	return &Listener{path: path, ln: ln, readTimeout: time.Second}, nil
}

// Path is the socket file.
func (l *Listener) Path() string { return l.path }

// Poll accepts at most one pending connection, waiting up to wait, reads its
// whole payload and parses it. Malformed payloads are logged and dropped.
func (l *Listener) Poll(wait time.Duration) (Command, bool) {
	if err := l.ln.SetDeadline(time.Now().Add(wait)); err != nil {
		return Command{}, false
	}
	conn, err := l.ln.AcceptUnix()
	if err != nil {
		var ne net.Error
		if !errors.As(err, &ne) || !ne.Timeout() {
			logger.Warn("accept failed",
				logger.Component("control-socket"),
				logger.ErrorField(err))
		}
		return Command{}, false
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(l.readTimeout))
	payload, err := io.ReadAll(io.LimitReader(conn, maxPayload))
	if err != nil {
		logger.Warn("read failed",
			logger.Component("control-socket"),
			logger.ErrorField(err))
		return Command{}, false
	}

	cmd, ok := ParseCommand(string(payload))
	if !ok {
		logger.Warn("ignoring unknown payload",
			logger.Component("control-socket"),
			logger.String("payload", string(payload)))
		return Command{}, false
	}
	logger.Info("remote command",
		logger.Component("control-socket"),
		logger.String("verb", cmd.Verb.String()),
		logger.Int("track", cmd.Track))
	return cmd, true
}

// Close stops listening and removes the socket file.
func (l *Listener) Close() error {
	err := l.ln.Close()
	_ = os.Remove(l.path)
	return err
}
