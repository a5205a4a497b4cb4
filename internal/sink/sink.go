// Package sink appends captured credentials to the logfile, one record
// per line, serialized across sessions.
package sink

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/telnetpot/telnetpot/internal/session"
)

// Logfile is the primary credential sink. Each record goes out as a
// single write under the lock, so records from concurrent sessions
// never interleave.
type Logfile struct {
	mu sync.Mutex
	f  *os.File
}

// Open opens (or creates) the logfile for appending. This happens at
// startup, before privileges are dropped.
func Open(path string) (*Logfile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open logfile: %w", err)
	}
	return &Logfile{f: f}, nil
}

func (l *Logfile) Record(rec session.CredentialRecord) error {
	line := fmt.Sprintf("%s - %s:%s\n", rec.Addr, rec.Username, rec.Password)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.f.WriteString(line)
	return err
}

func (l *Logfile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Multi fans a record out to several sinks, collecting every error.
type Multi []session.Sink

func (m Multi) Record(rec session.CredentialRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
