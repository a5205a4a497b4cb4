package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings is everything tunable about the daemon apart from the
// logfile path, which is the single positional CLI argument.
type Settings struct {
	ListenAddr       string        `envconfig:"LISTEN_ADDR" default:":23"`
	Hostname         string        `envconfig:"HOSTNAME" default:"kexec.com"`
	NegotiateTimeout time.Duration `envconfig:"NEGOTIATE_TIMEOUT" default:"1s"`
	AuthDelay        time.Duration `envconfig:"AUTH_DELAY" default:"1s"`
	RejectDelay      time.Duration `envconfig:"REJECT_DELAY" default:"2s"`
	LineMax          int           `envconfig:"LINE_MAX" default:"1024"`
	ChrootDir        string        `envconfig:"CHROOT_DIR" default:"/var/empty"`
	DropUser         string        `envconfig:"DROP_USER" default:"nobody"`
	DatabasePath     string        `envconfig:"DATABASE_PATH" default:""`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"INFO"`
}

func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("TELNETPOT", &s); err != nil {
		return s, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}
