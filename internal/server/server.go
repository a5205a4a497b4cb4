// Package server accepts connections and dispatches each to its own
// session goroutine. Sessions own their connection outright; the server
// only tracks them for shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"github.com/telnetpot/telnetpot/internal/session"
)

var log = logging.MustGetLogger("telnetpot/server")

type Server struct {
	ctl *session.Controller
}

func New(ctl *session.Controller) *Server {
	return &Server{ctl: ctl}
}

// Serve accepts on ln until ctx is cancelled, then closes the listener
// and waits for running sessions to unwind. Session cancellation is
// carried by ctx itself.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()[:8]
	addr := peerHost(conn.RemoteAddr())
	log.Infof("session %s accepted from %s", id, addr)
	s.ctl.Run(ctx, conn, addr)
	log.Infof("session %s from %s closed", id, addr)
}

// peerHost strips the port; records carry the peer address only.
func peerHost(a net.Addr) string {
	host, _, err := net.SplitHostPort(a.String())
	if err != nil {
		return a.String()
	}
	return host
}
