// Package session drives one connection through negotiation and the
// endless fake login loop. Sessions share nothing with each other; the
// only common resource is the credential sink.
package session

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/telnetpot/telnetpot/internal/telnet"
	"github.com/telnetpot/telnetpot/internal/term"
)

var log = logging.MustGetLogger("telnetpot/session")

// CredentialRecord is one captured login attempt. It is handed to the
// sink as soon as the password prompt completes and not retained here.
type CredentialRecord struct {
	Addr          string
	Username      string
	Password      string
	TerminalType  string
	TerminalWidth int
}

// Sink receives captured credentials. Implementations must serialize
// concurrent records; sessions call it from independent goroutines.
type Sink interface {
	Record(rec CredentialRecord) error
}

type Config struct {
	// Hostname is the name the fake console claims to be.
	Hostname string
	// NegotiateTimeout bounds the option negotiation phase. There is
	// deliberately no bound on the interactive phase.
	NegotiateTimeout time.Duration
	// AuthDelay simulates authentication latency after each attempt.
	AuthDelay time.Duration
	// RejectDelay holds the rejection on screen before re-prompting.
	RejectDelay time.Duration
	// LineMax caps captured usernames and passwords.
	LineMax int
}

func (c *Config) setDefaults() {
	if c.Hostname == "" {
		c.Hostname = "kexec.com"
	}
	if c.NegotiateTimeout == 0 {
		c.NegotiateTimeout = time.Second
	}
	if c.LineMax == 0 {
		c.LineMax = 1024
	}
}

// Controller runs the capture loop for connections handed to it.
type Controller struct {
	cfg  Config
	sink Sink
}

func NewController(cfg Config, sink Sink) *Controller {
	cfg.setDefaults()
	return &Controller{cfg: cfg, sink: sink}
}

// Run services one connection until the peer disconnects, the protocol
// aborts, or ctx is cancelled. Cancellation flushes a terminal reset to
// the peer and closes the connection, which unblocks any pending read.
func (c *Controller) Run(ctx context.Context, conn net.Conn, addr string) {
	defer conn.Close()

	r := term.NewRenderer(conn)
	stop := context.AfterFunc(ctx, func() {
		_ = r.Reset()
		_ = conn.Close()
	})
	defer stop()

	err := c.run(ctx, conn, r, addr)
	switch {
	case err == nil || errors.Is(err, io.EOF):
		log.Debugf("%s disconnected", addr)
	case errors.Is(err, telnet.ErrNegotiationTimeout), errors.Is(err, telnet.ErrBadNegotiation):
		log.Infof("%s rejected: %v", addr, err)
		c.renderAbort(r)
	case errors.Is(err, term.ErrCommandByte):
		log.Warningf("%s sent a command byte mid-line, dropping session", addr)
	default:
		log.Debugf("%s session ended: %v", addr, err)
	}
}

func (c *Controller) run(ctx context.Context, conn net.Conn, r *term.Renderer, addr string) error {
	table := telnet.NewStanceTable()
	profile, err := telnet.Negotiate(conn, table, c.cfg.NegotiateTimeout)
	if err != nil {
		return err
	}
	log.Infof("%s negotiated terminal %q width %d", addr, profile.Type, profile.Width)

	if err := c.renderIntro(r); err != nil {
		return err
	}

	for {
		username, err := c.prompt(conn, r, "Username: ", false)
		if err != nil {
			return err
		}
		password, err := c.prompt(conn, r, "Password: ", true)
		if err != nil {
			return err
		}
		if err := r.Newline(2); err != nil {
			return err
		}

		rec := CredentialRecord{
			Addr:          addr,
			Username:      username,
			Password:      password,
			TerminalType:  profile.Type,
			TerminalWidth: profile.Width,
		}
		if err := c.sink.Record(rec); err != nil {
			log.Errorf("record from %s: %v", addr, err)
		}
		log.Noticef("honeypotted: %s - %s:%s", addr, username, password)

		if !c.pause(ctx, c.cfg.AuthDelay) {
			return ctx.Err()
		}
		if err := r.Newline(1); err != nil {
			return err
		}
		if err := r.Styled(term.StyleRed, "Invalid credentials. Please try again."); err != nil {
			return err
		}
		if !c.pause(ctx, c.cfg.RejectDelay) {
			return ctx.Err()
		}

		if err := c.renderHeader(r); err != nil {
			return err
		}
		if err := r.Newline(2); err != nil {
			return err
		}
		if !strings.Contains(username, "@") {
			// Nudge the peer toward handing over a fully qualified,
			// more identifying account name on the next attempt.
			if err := r.Styled(term.StyleBlue, "Be sure to include the domain in your username (e.g. @gmail.com)."); err != nil {
				return err
			}
			if err := r.Newline(2); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) prompt(conn net.Conn, r *term.Renderer, label string, masked bool) (string, error) {
	if err := r.Styled(term.StyleGreen, label); err != nil {
		return "", err
	}
	return term.ReadLine(conn, r, c.cfg.LineMax, masked)
}

func (c *Controller) renderIntro(r *term.Renderer) error {
	if err := r.SetTitle("Welcome to " + c.cfg.Hostname); err != nil {
		return err
	}
	if err := c.renderHeader(r); err != nil {
		return err
	}
	if err := r.Newline(3); err != nil {
		return err
	}
	if err := r.Print("This console uses "); err != nil {
		return err
	}
	if err := r.Styled(term.StyleBlue, "Google App Engine"); err != nil {
		return err
	}
	if err := r.Print(" for authentication. To login as"); err != nil {
		return err
	}
	if err := r.Newline(1); err != nil {
		return err
	}
	if err := r.Print("an administrator, enter the admin account credentials. If you do not"); err != nil {
		return err
	}
	if err := r.Newline(1); err != nil {
		return err
	}
	if err := r.Print("yet have an account on " + c.cfg.Hostname + ", enter your Google credentials to begin."); err != nil {
		return err
	}
	return r.Newline(4)
}

func (c *Controller) renderHeader(r *term.Renderer) error {
	if err := r.ClearScreen(); err != nil {
		return err
	}
	if err := r.Print(strings.Repeat(" ", 18)); err != nil {
		return err
	}
	return r.Styled(term.StyleBold, c.cfg.Hostname+" Administration Console")
}

func (c *Controller) renderAbort(r *term.Renderer) {
	_ = r.Reset()
	_ = r.Styled(term.StyleRed, "*** You must connect using a real telnet client. ***")
	_ = r.Newline(1)
}

// pause waits d unless the context ends first.
func (c *Controller) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
