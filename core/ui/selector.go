package ui

import "strconv"

// maxEntryDigits bounds the numeral buffer; no catalog needs more.
const maxEntryDigits = 5

// entry is the numeral buffer of the track selector.
type entry struct {
	digits []byte
}

func (e *entry) reset() { e.digits = e.digits[:0] }

// press appends the digit for keypad label i (1..10); label 10 enters 0.
func (e *entry) press(i int) bool {
	if len(e.digits) >= maxEntryDigits {
		return false
	}
	e.digits = append(e.digits, byte('0'+i%10))
	return true
}

func (e *entry) backspace() bool {
	if len(e.digits) == 0 {
		return false
	}
	e.digits = e.digits[:len(e.digits)-1]
	return true
}

func (e *entry) String() string { return string(e.digits) }

// number parses the buffer as a 1-based track number.
func (e *entry) number() (int, bool) {
	if len(e.digits) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(e.digits))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
