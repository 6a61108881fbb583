//go:build !linux

package pointer

import (
	"errors"
)

var errUnsupported = errors.New("evdev input is only available on linux")

type FdSource interface {
	Fd() int
}

type Device struct{}

func OpenDevice(path string) (*Device, error) { return nil, errUnsupported }

func (d *Device) Fd() int       { return -1 }
func (d *Device) Grab() error   { return errUnsupported }
func (d *Device) Ungrab() error { return errUnsupported }
func (d *Device) Close() error  { return nil }

type Reader struct{}

func NewReader(src FdSource) *Reader { return &Reader{} }

func (r *Reader) Start() error        { return errUnsupported }
func (r *Reader) Stop()               {}
func (r *Reader) Drain() []InputEvent { return nil }
