// Package term renders the honeypot's fake console to the peer and
// performs server-side line editing. The negotiation phase tells the
// client not to echo locally, so every visible character the peer sees
// while typing comes from here.
package term

import (
	"fmt"
	"io"
)

// Text styles. Each styled write is closed with attrReset.
const (
	StyleBold  = "\x1b[1m"
	StyleRed   = "\x1b[1;31m"
	StyleGreen = "\x1b[1;32m"
	StyleBlue  = "\x1b[1;34m"

	attrReset  = "\x1b[0m"
	cursorShow = "\x1b[?25h"
	cursorHide = "\x1b[?25l"
	clearHome  = "\x1b[H\x1b[2J"
	clearToEnd = "\x1b[K"
)

// Renderer writes terminal output to a peer. All methods are
// best-effort: a write error means the peer is gone and the session
// should be torn down, never escalated further.
type Renderer struct {
	w io.Writer
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Newline emits n telnet line breaks. The wire format wants the
// three-byte CR NUL LF sequence rather than a bare LF.
func (r *Renderer) Newline(n int) error {
	for i := 0; i < n; i++ {
		if _, err := io.WriteString(r.w, "\r\x00\n"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) ShowCursor() error {
	_, err := io.WriteString(r.w, cursorShow)
	return err
}

func (r *Renderer) HideCursor() error {
	_, err := io.WriteString(r.w, cursorHide)
	return err
}

// ClearScreen homes the cursor, wipes the display and hides the cursor,
// resetting the illusion for the next prompt round.
func (r *Renderer) ClearScreen() error {
	_, err := io.WriteString(r.w, clearHome+cursorHide)
	return err
}

// Reset restores the peer's terminal on the way out: cursor visible,
// attributes cleared, screen wiped.
func (r *Renderer) Reset() error {
	_, err := io.WriteString(r.w, cursorShow+attrReset+clearHome)
	return err
}

// SetTitle attempts to set the terminal title via the three escape
// variants understood by different terminals.
func (r *Renderer) SetTitle(title string) error {
	_, err := fmt.Fprintf(r.w, "\x1bk%s\x1b\x5c\x1b]1;%s\a\x1b]2;%s\a", title, title, title)
	return err
}

// Print writes literal text.
func (r *Renderer) Print(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

// Styled writes text in the given style and resets attributes after.
func (r *Renderer) Styled(style, s string) error {
	_, err := io.WriteString(r.w, style+s+attrReset)
	return err
}

// eraseOne rubs out the last rendered character in place.
func (r *Renderer) eraseOne() error {
	_, err := io.WriteString(r.w, "\b \b")
	return err
}

// rewindClear moves the cursor n columns left and clears to end of
// line, so a masked field can be re-rendered from scratch.
func (r *Renderer) rewindClear(n int) error {
	_, err := fmt.Fprintf(r.w, "\x1b[%dD%s", n, clearToEnd)
	return err
}

func (r *Renderer) putByte(b byte) error {
	_, err := r.w.Write([]byte{b})
	return err
}
