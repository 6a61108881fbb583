// Package pointer turns a touch panel's evdev stream into debounce-ready gestures.
//
// Acquisition runs on its own goroutine and only buffers raw events. Decoding
// happens on demand from the ui loop, see Decoder.CheckInput.
package pointer

import (
	"encoding/binary"
	"errors"
)

// Linux input event types and the multitouch codes the panel reports.
const (
	evSyn = 0x00
	evAbs = 0x03

	absMTPositionX  = 53
	absMTPositionY  = 54
	absMTTrackingID = 57
)

// eventSize is sizeof(struct input_event) on 64-bit Linux:
// struct timeval (16) + __u16 type + __u16 code + __s32 value.
const eventSize = 24

// ErrStopped is returned when a reader is started after it has been stopped.
var ErrStopped = errors.New("pointer reader stopped")

// InputEvent is one decoded struct input_event.
type InputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// decodeEvents parses every whole record in buf and returns the unconsumed tail.
func decodeEvents(buf []byte) ([]InputEvent, []byte) {
	n := len(buf) / eventSize
	out := make([]InputEvent, 0, n)
	for i := 0; i < n; i++ {
		rec := buf[i*eventSize : (i+1)*eventSize]
		out = append(out, InputEvent{
			Sec:   int64(binary.NativeEndian.Uint64(rec[0:8])),
			Usec:  int64(binary.NativeEndian.Uint64(rec[8:16])),
			Type:  binary.NativeEndian.Uint16(rec[16:18]),
			Code:  binary.NativeEndian.Uint16(rec[18:20]),
			Value: int32(binary.NativeEndian.Uint32(rec[20:24])),
		})
	}
	return out, buf[n*eventSize:]
}

// encodeEvent is the inverse of decodeEvents for a single record.
func encodeEvent(ev InputEvent) []byte {
	rec := make([]byte, eventSize)
	binary.NativeEndian.PutUint64(rec[0:8], uint64(ev.Sec))
	binary.NativeEndian.PutUint64(rec[8:16], uint64(ev.Usec))
	binary.NativeEndian.PutUint16(rec[16:18], ev.Type)
	binary.NativeEndian.PutUint16(rec[18:20], ev.Code)
	binary.NativeEndian.PutUint32(rec[20:24], uint32(ev.Value))
	return rec
}
