// Package privdrop confines the process before any connection is
// serviced: chroot plus identity drop when running as root, and a
// best-effort Landlock ruleset on kernels that support it. Any failure
// here is fatal at startup and never recovered.
package privdrop

import "github.com/op/go-logging"

var log = logging.MustGetLogger("telnetpot/privdrop")

// Config names the unprivileged identity and filesystem confinement.
type Config struct {
	// User is the account to drop to when running as root.
	User string
	// ChrootDir is the directory to chroot into when running as root.
	ChrootDir string
	// WritePaths lists directories that must stay writable afterwards
	// (the SQLite store directory, when enabled).
	WritePaths []string
}
