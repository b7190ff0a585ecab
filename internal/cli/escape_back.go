package cli

import (
	"io"
	"sync/atomic"
	"time"
)

const (
	escapeByte    = byte(0x1b)
	interruptByte = byte(0x03)

	// Terminals send the rest of an arrow key sequence within a few
	// milliseconds of the leading escape.
	escapeSequenceWindow = 25 * time.Millisecond
)

// terminalInput is the stdin survey reads from. survey needs the descriptor
// to switch the terminal into raw mode.
type terminalInput interface {
	io.Reader
	Fd() uintptr
}

// escapeBackReader turns a lone Esc key press into Ctrl+C for survey and
// remembers it, so the wizard can treat the interrupt as "go back" instead
// of quitting.
type escapeBackReader struct {
	input   terminalInput
	pending func(fd uintptr, window time.Duration) bool
	back    atomic.Bool
}

func newEscapeBackReader(input terminalInput) *escapeBackReader {
	return &escapeBackReader{input: input, pending: inputPending}
}

func (r *escapeBackReader) Read(p []byte) (int, error) {
	n, err := r.input.Read(p)
	if n <= 0 {
		return n, err
	}

	// Only a trailing escape can be a key press of its own; an escape
	// followed by more bytes in the same read starts a sequence.
	last := n - 1
	if p[last] == escapeByte && !r.pending(r.input.Fd(), escapeSequenceWindow) {
		p[last] = interruptByte
		r.back.Store(true)
	}

	return n, err
}

func (r *escapeBackReader) Fd() uintptr {
	return r.input.Fd()
}

// TakeBack reports whether Esc was pressed since the last call.
func (r *escapeBackReader) TakeBack() bool {
	return r.back.Swap(false)
}
