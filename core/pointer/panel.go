package pointer

import (
	"fmt"

	"buck/core/mailbox"
)

// Panel bundles the device, its acquisition reader and the decoder for the ui loop.
type Panel struct {
	dev     *Device
	reader  *Reader
	decoder *Decoder
}

// OpenPanel opens the device at path and starts acquisition.
func OpenPanel(path string, geom Geometry) (*Panel, error) {
	dev, err := OpenDevice(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(dev)
	if err := r.Start(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("start pointer reader: %w", err)
	}
	return &Panel{dev: dev, reader: r, decoder: NewDecoder(r, geom)}, nil
}

func (p *Panel) CheckInput()                       { p.decoder.CheckInput() }
func (p *Panel) Gestures() *mailbox.Queue[Gesture] { return p.decoder.Gestures() }
func (p *Panel) Grab() error                       { return p.dev.Grab() }
func (p *Panel) Ungrab() error                     { return p.dev.Ungrab() }

// Close stops acquisition and releases the device.
func (p *Panel) Close() error {
	p.reader.Stop()
	return p.dev.Close()
}
