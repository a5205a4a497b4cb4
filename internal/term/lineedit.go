package term

import (
	"bytes"
	"errors"
	"io"
)

// ErrCommandByte reports an IAC byte arriving where only plain text is
// expected. Nothing past that point is safe to treat as input, so the
// in-progress line is discarded and the session ends.
var ErrCommandByte = errors.New("term: protocol command byte in line input")

const maskByte = '*'

// ReadLine reads one line from in, rendering each keystroke back to the
// peer through r (the client's own echo has been negotiated off).
// The line is capped at capacity bytes; further characters are dropped
// silently while the session continues. In masked mode every byte is
// rendered as an asterisk and a backspace re-renders the whole field,
// since individual mask characters carry no position to erase in place.
//
// io.EOF means the peer closed the connection, which for an interactive
// tool is a normal way to leave.
func ReadLine(in io.Reader, r *Renderer, capacity int, masked bool) (string, error) {
	if err := r.ShowCursor(); err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(make([]byte, 0, capacity))
	var one [1]byte
	for {
		if _, err := io.ReadFull(in, one[:]); err != nil {
			return "", err
		}
		b := one[0]
		if b == 0 {
			// The CR NUL line break convention leaves a stray NUL in
			// front of the next keystroke; swallow it.
			if _, err := io.ReadFull(in, one[:]); err != nil {
				return "", err
			}
			b = one[0]
		}

		switch {
		case b == '\r' || b == '\n':
			if err := r.Newline(1); err != nil {
				return "", err
			}
			if err := r.HideCursor(); err != nil {
				return "", err
			}
			return buf.String(), nil

		case b == '\b' || b == 0x7f:
			n := buf.Len()
			if n == 0 {
				continue
			}
			buf.Truncate(n - 1)
			if masked {
				if err := r.rewindClear(n); err != nil {
					return "", err
				}
				for i := 0; i < n-1; i++ {
					if err := r.putByte(maskByte); err != nil {
						return "", err
					}
				}
			} else {
				if err := r.eraseOne(); err != nil {
					return "", err
				}
			}

		case b == 0xff:
			return "", ErrCommandByte

		default:
			if buf.Len() >= capacity {
				continue
			}
			buf.WriteByte(b)
			out := b
			if masked {
				out = maskByte
			}
			if err := r.putByte(out); err != nil {
				return "", err
			}
		}
	}
}
