//go:build linux

package privdrop

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	landlock "github.com/landlock-lsm/go-landlock/landlock"
	"golang.org/x/sys/unix"
)

// Apply drops privileges and confines the filesystem. The logfile,
// listener and database are already open by the time this runs; only
// paths in cfg.WritePaths remain reachable afterwards.
func Apply(cfg Config) error {
	if os.Geteuid() == 0 {
		if err := dropRoot(cfg); err != nil {
			return err
		}
	}
	return confine(cfg.WritePaths)
}

func dropRoot(cfg Config) error {
	u, err := user.Lookup(cfg.User)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", cfg.User, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("parse uid %q: %w", u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("parse gid %q: %w", u.Gid, err)
	}

	if err := unix.Chroot(cfg.ChrootDir); err != nil {
		return fmt.Errorf("chroot %s: %w", cfg.ChrootDir, err)
	}
	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("chdir /: %w", err)
	}
	if err := unix.Setresgid(gid, gid, gid); err != nil {
		return fmt.Errorf("setresgid: %w", err)
	}
	if err := unix.Setgroups([]int{gid}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := unix.Setresuid(uid, uid, uid); err != nil {
		return fmt.Errorf("setresuid: %w", err)
	}
	if os.Geteuid() == 0 || os.Getegid() == 0 {
		return fmt.Errorf("mysteriously still running as root after dropping to %s", cfg.User)
	}
	log.Infof("dropped privileges to %s, chrooted to %s", cfg.User, cfg.ChrootDir)
	return nil
}

func confine(writePaths []string) error {
	rules := make([]landlock.Rule, 0, len(writePaths))
	for _, p := range writePaths {
		if _, err := os.Stat(p); err != nil {
			log.Warningf("landlock: skipping unreachable path %s: %v", p, err)
			continue
		}
		rules = append(rules, landlock.RWDirs(p))
	}
	if err := landlock.V6.BestEffort().RestrictPaths(rules...); err != nil {
		return fmt.Errorf("landlock restrict: %w", err)
	}
	log.Debugf("landlock ruleset applied (%d writable paths)", len(rules))
	return nil
}
