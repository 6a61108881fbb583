package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"buck/logger"
	"buck/model"
)

// Process is a running external player. Its pipes are owned by the actor goroutine.
type Process interface {
	Stdin() io.Writer
	Stdout() io.Reader
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	Kill() error
}

// Launcher starts a player for one track.
type Launcher interface {
	Launch(track model.Track, volume int) (Process, error)
}

// MPlayer launches mplayer in slave mode, driven over stdin with answers on stdout.
type MPlayer struct {
	path string
}

// NewMPlayer creates a launcher for the mplayer binary at path.
func NewMPlayer(path string) *MPlayer {
	return &MPlayer{path: path}
}

// Args returns the command line used for a track.
func (m *MPlayer) Args(track model.Track, volume int) []string {
	return []string{
		"-slave", "-quiet",
		"-demuxer", "35",
		"-volume", strconv.Itoa(volume),
		"-softvol", "-softvol-max", "190",
		track.Path,
	}
}

// Launch starts mplayer. Stdout goes through an os.Pipe owned by us, so reaping the
// process never races with readers of its output.
func (m *MPlayer) Launch(track model.Track, volume int) (Process, error) {
	args := m.Args(track, volume)
	cmd := exec.Command(m.path, args...)
	cmd.SysProcAttr = sysProcAttr()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stdout = pw
	p := &execProcess{cmd: cmd, stdin: stdin, stdout: pr, done: make(chan struct{})}
	cmd.Stderr = &p.stderr

	logger.Debug("launching player",
		logger.Component("player-control"),
		logger.String("cmd", m.path+" "+strings.Join(args, " ")))

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("start %s: %w", m.path, err)
	}
	pw.Close()

	go func() {
		err := cmd.Wait()
		if err != nil {
			logger.Debug("player exited",
				logger.Component("player-control"),
				logger.ErrorField(err),
				logger.String("stderr", p.stderrTail()))
		}
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *os.File
	done   chan struct{}
	stderr lockedBuffer
}

func (p *execProcess) Stdin() io.Writer      { return p.stdin }
func (p *execProcess) Stdout() io.Reader     { return p.stdout }
func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Kill() error {
	p.stdin.Close()
	err := p.cmd.Process.Kill()
	// the reader side unblocks once the last writer (the child) is gone
	go func() {
		<-p.done
		p.stdout.Close()
	}()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *execProcess) stderrTail() string {
	s := p.stderr.String()
	if len(s) > 512 {
		s = s[len(s)-512:]
	}
	return s
}

// lockedBuffer lets exec's copier goroutine and the reaper share stderr.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
