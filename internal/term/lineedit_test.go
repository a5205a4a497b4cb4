package term

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLine(t *testing.T, input string, capacity int, masked bool) (string, string, error) {
	t.Helper()
	var out bytes.Buffer
	line, err := ReadLine(strings.NewReader(input), NewRenderer(&out), capacity, masked)
	return line, out.String(), err
}

func TestReadLinePlain(t *testing.T) {
	line, out, err := readLine(t, "admin\r", 1024, false)
	require.NoError(t, err)
	assert.Equal(t, "admin", line)
	// Every keystroke is echoed back by the server, and the line ends
	// with the CR NUL LF wire sequence.
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "\r\x00\n")
	// Cursor shown for typing, hidden after.
	assert.Contains(t, out, "\x1b[?25h")
	assert.Contains(t, out, "\x1b[?25l")
}

func TestReadLineLineFeedTerminates(t *testing.T) {
	line, _, err := readLine(t, "root\n", 1024, false)
	require.NoError(t, err)
	assert.Equal(t, "root", line)
}

func TestReadLineMaskedNeverEchoesLiteral(t *testing.T) {
	line, out, err := readLine(t, "hunter2\r", 1024, true)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", line)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, strings.Repeat("*", 7))
}

func TestReadLinePlainBackspace(t *testing.T) {
	line, out, err := readLine(t, "adminn\b\r", 1024, false)
	require.NoError(t, err)
	assert.Equal(t, "admin", line)
	assert.Contains(t, out, "\b \b")
}

func TestReadLineBackspaceOnEmptyIsNoop(t *testing.T) {
	line, out, err := readLine(t, "\b\x7fadmin\r", 1024, false)
	require.NoError(t, err)
	assert.Equal(t, "admin", line)
	assert.NotContains(t, out, "\b \b")
}

func TestReadLineMaskedBackspaceRemovesOneCharacter(t *testing.T) {
	line, out, err := readLine(t, "ab\b\r", 1024, true)
	require.NoError(t, err)
	assert.Equal(t, "a", line)
	// The masked field is re-rendered from scratch: cursor back over
	// the two stars, clear to end, one star rewritten.
	assert.Contains(t, out, "\x1b[2D\x1b[K*")
}

func TestReadLineSwallowsNULAfterByte(t *testing.T) {
	line, _, err := readLine(t, "a\x00b\r", 1024, false)
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
}

func TestReadLineCommandByteAborts(t *testing.T) {
	line, _, err := readLine(t, "adm\xffin\r", 1024, false)
	assert.ErrorIs(t, err, ErrCommandByte)
	assert.Empty(t, line)
}

func TestReadLineEOFPropagates(t *testing.T) {
	line, _, err := readLine(t, "abc", 1024, false)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, line)
}

func TestReadLineDropsBytesPastCapacity(t *testing.T) {
	line, out, err := readLine(t, "abcdef\r", 3, false)
	require.NoError(t, err)
	assert.Equal(t, "abc", line)
	// Dropped characters are not rendered either.
	assert.NotContains(t, out, "d")
}
