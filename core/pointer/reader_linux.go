//go:build linux

package pointer

import (
	"errors"
	"fmt"
	"sync"

	"buck/logger"

	"golang.org/x/sys/unix"
)

// FdSource is anything exposing a readable, non-blocking descriptor of input_event records.
type FdSource interface {
	Fd() int
}

// Reader is the acquisition stage. Its goroutine sleeps in epoll_wait on the
// device and on an eventfd used as the stop signal, and on each wake drains every
// available record into a buffer guarded by mu.
type Reader struct {
	src FdSource

	mu  sync.Mutex
	buf []InputEvent

	state   sync.Mutex
	started bool
	stopped bool
	epfd    int
	stopfd  int
	done    chan struct{}
}

// NewReader prepares a reader for src. Nothing runs until Start.
func NewReader(src FdSource) *Reader {
	return &Reader{src: src, epfd: -1, stopfd: -1}
}

// Start launches the acquisition goroutine. Starting twice is a no-op;
// starting after Stop returns ErrStopped.
func (r *Reader) Start() error {
	r.state.Lock()
	defer r.state.Unlock()

	if r.stopped {
		return ErrStopped
	}
	if r.started {
		return nil
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	stopfd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return fmt.Errorf("eventfd: %w", err)
	}
	for _, fd := range []int{r.src.Fd(), stopfd} {
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			unix.Close(stopfd)
			unix.Close(epfd)
			return fmt.Errorf("epoll_ctl add %d: %w", fd, err)
		}
	}

	r.epfd, r.stopfd = epfd, stopfd
	r.done = make(chan struct{})
	r.started = true
	go r.loop()

	logger.Info("pointer acquisition started", logger.Component("pointer"))
	return nil
}

// Stop signals the goroutine and waits for it to leave epoll_wait.
func (r *Reader) Stop() {
	r.state.Lock()
	defer r.state.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true
	if !r.started {
		return
	}

	one := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if _, err := unix.Write(r.stopfd, one); err != nil {
		logger.Warn("failed to signal pointer reader",
			logger.Component("pointer"),
			logger.ErrorField(err))
	}
	<-r.done
	unix.Close(r.stopfd)
	unix.Close(r.epfd)
	logger.Info("pointer acquisition stopped", logger.Component("pointer"))
}

// Drain returns every buffered event in arrival order and empties the buffer.
func (r *Reader) Drain() []InputEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.buf
	r.buf = nil
	return out
}

func (r *Reader) loop() {
	defer close(r.done)

	fd := r.src.Fd()
	events := make([]unix.EpollEvent, 2)
	chunk := make([]byte, eventSize*64)
	var pending []byte

	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			logger.Error("epoll_wait failed",
				logger.Component("pointer"),
				logger.ErrorField(err))
			return
		}

		for i := 0; i < n; i++ {
			if int(events[i].Fd) == r.stopfd {
				return
			}
		}

		// drain the device until it would block
		for {
			m, err := unix.Read(fd, chunk)
			if err != nil {
				if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
					break
				}
				logger.Error("input device read failed",
					logger.Component("pointer"),
					logger.ErrorField(err))
				return
			}
			if m == 0 {
				logger.Warn("input device closed", logger.Component("pointer"))
				return
			}
			pending = append(pending, chunk[:m]...)
			var decoded []InputEvent
			decoded, pending = decodeEvents(pending)
			pending = append([]byte(nil), pending...)
			if len(decoded) > 0 {
				r.mu.Lock()
				r.buf = append(r.buf, decoded...)
				r.mu.Unlock()
			}
		}
	}
}
