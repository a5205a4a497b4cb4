package session

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telnetpot/telnetpot/internal/telnet"
)

type fakeSink struct {
	mu   sync.Mutex
	recs []CredentialRecord
}

func (f *fakeSink) Record(r CredentialRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, r)
	return nil
}

func (f *fakeSink) records() []CredentialRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CredentialRecord(nil), f.recs...)
}

// harness drains the session's output so synchronous pipe writes never
// block, and lets tests wait for rendered text.
type harness struct {
	conn net.Conn
	mu   sync.Mutex
	out  strings.Builder
}

func newHarness(conn net.Conn) *harness {
	h := &harness{conn: conn}
	go func() {
		var buf [512]byte
		for {
			n, err := conn.Read(buf[:])
			h.mu.Lock()
			h.out.Write(buf[:n])
			h.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	return h
}

func (h *harness) output() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.out.String()
}

func (h *harness) waitFor(t *testing.T, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(h.output(), substr)
	}, 2*time.Second, 2*time.Millisecond, "waiting for %q", substr)
}

func (h *harness) send(t *testing.T, b []byte) {
	t.Helper()
	_, err := h.conn.Write(b)
	require.NoError(t, err)
}

func startSession(t *testing.T, ctx context.Context, cfg Config, snk Sink) (*harness, chan struct{}) {
	t.Helper()
	client, srv := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewController(cfg, snk).Run(ctx, srv, "192.0.2.7")
	}()
	return newHarness(client), done
}

func completeNegotiation(t *testing.T, h *harness, termType string, width byte) {
	t.Helper()
	script := []byte{telnet.IAC, telnet.SB, telnet.TTYPE, telnet.IS}
	script = append(script, termType...)
	script = append(script, telnet.IAC, telnet.SE)
	script = append(script, telnet.IAC, telnet.SB, telnet.NAWS, 0, width, 0, 24, telnet.IAC, telnet.SE)
	h.send(t, script)
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate")
	}
}

func TestSessionCapturesCredentials(t *testing.T) {
	snk := &fakeSink{}
	h, done := startSession(t, context.Background(), Config{}, snk)

	completeNegotiation(t, h, "xterm", 132)
	h.waitFor(t, "Administration Console")
	h.waitFor(t, "Username: ")
	h.send(t, []byte("admin\r\x00"))
	h.waitFor(t, "Password: ")
	h.send(t, []byte("hunter2\r\x00"))

	require.Eventually(t, func() bool { return len(snk.records()) == 1 },
		2*time.Second, 2*time.Millisecond)
	rec := snk.records()[0]
	assert.Equal(t, CredentialRecord{
		Addr:          "192.0.2.7",
		Username:      "admin",
		Password:      "hunter2",
		TerminalType:  "xterm",
		TerminalWidth: 132,
	}, rec)

	h.waitFor(t, "Invalid credentials. Please try again.")
	// No "@" in the username: the domain hint nudges the peer.
	h.waitFor(t, "Be sure to include the domain")

	// The loop re-prompts; it never succeeds and never gives up.
	require.Eventually(t, func() bool {
		return strings.Count(h.output(), "Username: ") >= 2
	}, 2*time.Second, 2*time.Millisecond)

	_ = h.conn.Close()
	waitDone(t, done)
	assert.Len(t, snk.records(), 1)
}

func TestSessionDomainQualifiedUsernameSkipsHint(t *testing.T) {
	snk := &fakeSink{}
	h, done := startSession(t, context.Background(), Config{}, snk)

	completeNegotiation(t, h, "xterm", 80)
	h.waitFor(t, "Username: ")
	h.send(t, []byte("admin@example.com\r\x00"))
	h.waitFor(t, "Password: ")
	h.send(t, []byte("hunter2\r\x00"))

	require.Eventually(t, func() bool {
		return strings.Count(h.output(), "Username: ") >= 2
	}, 2*time.Second, 2*time.Millisecond)
	assert.NotContains(t, h.output(), "Be sure to include the domain")

	_ = h.conn.Close()
	waitDone(t, done)
}

func TestSessionCommandByteMidLineAbortsWithoutRecord(t *testing.T) {
	snk := &fakeSink{}
	h, done := startSession(t, context.Background(), Config{}, snk)

	completeNegotiation(t, h, "xterm", 80)
	h.waitFor(t, "Username: ")
	h.send(t, []byte{'a', 'd', 'm', 0xff})

	waitDone(t, done)
	assert.Empty(t, snk.records())
}

func TestSessionRejectsNonTerminalClient(t *testing.T) {
	snk := &fakeSink{}
	cfg := Config{NegotiateTimeout: 50 * time.Millisecond}
	h, done := startSession(t, context.Background(), cfg, snk)

	// Say nothing: a scanner holding the socket open.
	waitDone(t, done)
	assert.Contains(t, h.output(), "You must connect using a real telnet client.")
	assert.Empty(t, snk.records())
}

func TestSessionCancellationFlushesReset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	snk := &fakeSink{}
	h, done := startSession(t, ctx, Config{}, snk)

	completeNegotiation(t, h, "xterm", 80)
	h.waitFor(t, "Username: ")

	cancel()
	waitDone(t, done)
	assert.Contains(t, h.output(), "\x1b[?25h\x1b[0m\x1b[H\x1b[2J")
}
