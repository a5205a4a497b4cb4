package telnet

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("telnetpot/telnet")

// subBufferMax bounds the subnegotiation accumulation buffer. Real
// clients send a handful of bytes here (a terminal name, four window
// size bytes); anything past the cap is dropped on the floor.
const subBufferMax = 1024

var (
	// ErrNegotiationTimeout reports a peer that never produced a
	// terminal type or window size within the deadline, i.e. a scanner
	// or a raw netcat rather than a real telnet client.
	ErrNegotiationTimeout = errors.New("telnet: negotiation timed out")

	// ErrBadNegotiation reports a malformed command stream, currently
	// only a doubled IAC.
	ErrBadNegotiation = errors.New("telnet: malformed negotiation")
)

// TerminalProfile is the outcome of a successful negotiation.
type TerminalProfile struct {
	Type  string
	Width int
}

func defaultProfile() TerminalProfile {
	return TerminalProfile{Type: "ansi", Width: 80}
}

type negotiationState int

const (
	stateIdle negotiationState = iota
	stateCommand
	stateOption
	stateSubneg
	stateDone
)

type negotiator struct {
	conn  net.Conn
	table *StanceTable

	state negotiationState
	verb  byte // pending DO/DONT/WILL/WONT while in stateOption
	inSub bool // stream position is inside an SB block
	sub   []byte

	completed int // TTYPE and NAWS each count once
	profile   TerminalProfile
}

// Negotiate runs the option negotiation over conn until both the
// terminal type and the window size have been resolved, the peer
// misbehaves, or timeout elapses. The deadline is disarmed as soon as
// either answer arrives, since a client producing one is behaving like
// a real terminal. On ErrBadNegotiation and ErrNegotiationTimeout the
// caller owns rendering a diagnostic before closing; io.EOF means the
// peer simply left.
func Negotiate(conn net.Conn, table *StanceTable, timeout time.Duration) (TerminalProfile, error) {
	n := &negotiator{
		conn:    conn,
		table:   table,
		sub:     make([]byte, 0, subBufferMax),
		profile: defaultProfile(),
	}

	if err := table.Announce(n.emit); err != nil {
		return n.profile, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var one [1]byte
	for n.state != stateDone {
		if _, err := io.ReadFull(conn, one[:]); err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return n.profile, ErrNegotiationTimeout
			}
			return n.profile, err
		}
		if err := n.step(one[0]); err != nil {
			return n.profile, err
		}
	}
	return n.profile, nil
}

// step advances the state machine by one input byte.
func (n *negotiator) step(b byte) error {
	switch n.state {
	case stateIdle:
		if b == IAC {
			n.state = stateCommand
		}
		// Anything else before negotiation completes is not payload
		// we care about; drop it.
		return nil

	case stateSubneg:
		if b == IAC {
			n.state = stateCommand
			return nil
		}
		if len(n.sub) < subBufferMax {
			n.sub = append(n.sub, b)
		}
		return nil

	case stateCommand:
		return n.command(b)

	case stateOption:
		return n.option(b)
	}
	return nil
}

func (n *negotiator) command(b byte) error {
	switch b {
	case SE:
		n.inSub = false
		n.closeSub()
		if n.completed < 2 {
			n.state = stateIdle
		}
		return nil
	case NOP:
		n.resume()
		return n.emitRaw([]byte{IAC, NOP})
	case WILL, WONT, DO, DONT:
		n.verb = b
		n.state = stateOption
		return nil
	case SB:
		n.inSub = true
		n.sub = n.sub[:0]
		n.state = stateSubneg
		return nil
	case IAC:
		// IAC IAC is an escaped data byte, which has no business in a
		// negotiation exchange. Treat the peer as hostile.
		return ErrBadNegotiation
	default:
		n.resume()
		return nil
	}
}

func (n *negotiator) option(opt byte) error {
	log.Debugf("peer sent %s %s", CodeToASCII[n.verb], CodeToASCII[opt])
	reply, transmit := n.table.Reconcile(n.verb, opt)
	if transmit {
		log.Debugf("replying %s %s", CodeToASCII[reply], CodeToASCII[opt])
		if err := n.emit(OptionPacket{Command: reply, Option: opt}); err != nil {
			return err
		}
	}
	if n.verb == WILL && opt == TTYPE {
		// The client is willing to tell us its terminal type; ask for
		// it right away.
		if err := n.emit(OptionPacket{Command: SB, Option: TTYPE, Parameters: []byte{SEND}}); err != nil {
			return err
		}
	}
	n.verb = 0
	n.resume()
	return nil
}

// closeSub interprets a completed subnegotiation block. The first
// buffered byte names the option the block pertains to; TTYPE and NAWS
// each disarm the deadline and count toward completion, everything else
// is ignored.
func (n *negotiator) closeSub() {
	if len(n.sub) == 0 {
		return
	}
	defer func() { n.sub = n.sub[:0] }()
	switch n.sub[0] {
	case TTYPE:
		n.disarm()
		if len(n.sub) > 2 {
			n.profile.Type = string(n.sub[2:])
		}
		n.completed++
	case NAWS:
		n.disarm()
		// Only the low byte of the client-reported width is honored;
		// widths above 255 columns wrap. Known limitation.
		if len(n.sub) > 2 {
			n.profile.Width = int(n.sub[2])
		}
		n.completed++
	}
	if n.completed >= 2 {
		n.state = stateDone
	}
}

// resume returns to the surrounding stream state after a command.
func (n *negotiator) resume() {
	if n.inSub {
		n.state = stateSubneg
	} else {
		n.state = stateIdle
	}
}

// disarm cancels the negotiation deadline.
func (n *negotiator) disarm() {
	_ = n.conn.SetReadDeadline(time.Time{})
}

func (n *negotiator) emit(p OptionPacket) error {
	return n.emitRaw(p.Bytes())
}

func (n *negotiator) emitRaw(b []byte) error {
	_, err := n.conn.Write(b)
	return err
}
