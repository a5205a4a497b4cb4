//go:build !linux

package privdrop

// Apply is a no-op outside Linux; chroot and Landlock are not
// available, and the honeypot is expected to run unprivileged there.
func Apply(cfg Config) error {
	log.Debugf("privilege confinement not available on this platform")
	return nil
}
