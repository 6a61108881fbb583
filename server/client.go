package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"buck/logger"

	"github.com/fsnotify/fsnotify"
)

// ErrNoDaemon means nothing is listening on the control socket.
var ErrNoDaemon = errors.New("no daemon listening on control socket")

// Retry intervals for SendOrSpawn, which otherwise wakes on the socket's create event.
var (
	fallbackRetry = time.Second
	createdRetry  = 20 * time.Millisecond
)

// Send writes payload to the daemon at path and closes the connection.
func Send(path, payload string) error {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoDaemon, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(payload)); err != nil {
		return fmt.Errorf("write control payload: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	return nil
}

// SendOrSpawn delivers payload, starting the daemon with spawn when nobody answers
// and waiting up to timeout for its socket to appear.
func SendOrSpawn(ctx context.Context, path, payload string, spawn func() error, timeout time.Duration) error {
	err := Send(path, payload)
	if err == nil || !errors.Is(err, ErrNoDaemon) {
		return err
	}

	logger.Info("no daemon answering, starting one",
		logger.Component("cli"),
		logger.String("socket", path),
		logger.ErrorField(err))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	watcher, werr := fsnotify.NewWatcher()
	if werr != nil {
		return fmt.Errorf("create watcher: %w", werr)
	}
	defer watcher.Close()
	if werr := watcher.Add(filepath.Dir(path)); werr != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), werr)
	}

	if err := spawn(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	retry := fallbackRetry
	for {
		if _, serr := os.Stat(path); serr == nil {
			if err = Send(path, payload); err == nil {
				logger.Info("payload delivered", logger.Component("cli"))
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: daemon did not come up: %v", ErrNoDaemon, ctx.Err())
		case ev, ok := <-watcher.Events:
			if !ok {
				return ErrNoDaemon
			}
			if ev.Op&fsnotify.Create == fsnotify.Create && filepath.Clean(ev.Name) == filepath.Clean(path) {
				logger.Debug("socket created", logger.Component("cli"), logger.String("path", ev.Name))
				// bound but maybe not listening yet
				retry = createdRetry
			}
		case werr, ok := <-watcher.Errors:
			if ok {
				logger.Warn("watcher error", logger.Component("cli"), logger.ErrorField(werr))
			}
		case <-time.After(retry):
		}
	}
}
