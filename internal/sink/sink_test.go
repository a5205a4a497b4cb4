package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telnetpot/telnetpot/internal/session"
)

func TestLogfileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "honeypot.log")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	err = l.Record(session.CredentialRecord{
		Addr:     "203.0.113.9",
		Username: "admin",
		Password: "hunter2",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9 - admin:hunter2\n", string(data))
}

func TestLogfileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "honeypot.log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(session.CredentialRecord{Addr: "a", Username: "u1", Password: "p1"}))
	require.NoError(t, l.Close())

	// Reopening must not clobber earlier captures.
	l, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(session.CredentialRecord{Addr: "b", Username: "u2", Password: "p2"}))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a - u1:p1\nb - u2:p2\n", string(data))
}

func TestLogfileSerializesConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "honeypot.log")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = l.Record(session.CredentialRecord{
					Addr:     fmt.Sprintf("10.0.0.%d", w),
					Username: fmt.Sprintf("user%d", i),
					Password: "pw",
				})
			}
		}(w)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, workers*perWorker)
	for _, line := range lines {
		// Every line is one intact record, never an interleaving.
		assert.Regexp(t, `^10\.0\.0\.\d+ - user\d+:pw$`, line)
	}
}

type failSink struct{}

func (failSink) Record(session.CredentialRecord) error {
	return errors.New("broken")
}

type okSink struct{ n int }

func (s *okSink) Record(session.CredentialRecord) error {
	s.n++
	return nil
}

func TestMultiRecordsEverySinkDespiteFailures(t *testing.T) {
	good := &okSink{}
	m := Multi{failSink{}, good}
	err := m.Record(session.CredentialRecord{Addr: "a"})
	assert.Error(t, err)
	assert.Equal(t, 1, good.n)
}
