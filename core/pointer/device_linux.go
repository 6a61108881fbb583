//go:build linux

package pointer

import (
	"fmt"
	"sync"

	"buck/logger"

	"golang.org/x/sys/unix"
)

// EVIOCGRAB = _IOW('E', 0x90, int)
const eviocgrab = 0x40044590

// Device is an evdev node opened non-blocking. The raw descriptor is used
// directly so that the Go runtime poller never touches it.
type Device struct {
	path string
	fd   int

	mu      sync.Mutex
	grabbed bool
	closed  bool
}

// OpenDevice opens the input node at path.
func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open input device %s: %w", path, err)
	}
	logger.Info("input device opened",
		logger.Component("pointer"),
		logger.String("path", path))
	return &Device{path: path, fd: fd}, nil
}

// Fd returns the raw descriptor.
func (d *Device) Fd() int { return d.fd }

// Grab takes exclusive ownership of the device so the native ui stops seeing touches.
// Grabbing an already grabbed device is a no-op.
func (d *Device) Grab() error {
	return d.setGrab(true)
}

// Ungrab hands the device back.
func (d *Device) Ungrab() error {
	return d.setGrab(false)
}

func (d *Device) setGrab(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrStopped
	}
	if d.grabbed == on {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	if err := unix.IoctlSetInt(d.fd, eviocgrab, v); err != nil {
		return fmt.Errorf("EVIOCGRAB(%d) on %s: %w", v, d.path, err)
	}
	d.grabbed = on
	logger.Debug("input grab changed",
		logger.Component("pointer"),
		logger.Bool("grabbed", on))
	return nil
}

// Close releases any grab and closes the descriptor.
func (d *Device) Close() error {
	_ = d.Ungrab()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return unix.Close(d.fd)
}
