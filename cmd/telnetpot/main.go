// Command telnetpot is a telnet honeypot. It presents a fake
// administrative console, captures whatever credentials a peer submits
// and appends them to the logfile named on the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/op/go-logging"

	"github.com/telnetpot/telnetpot/internal/config"
	"github.com/telnetpot/telnetpot/internal/privdrop"
	"github.com/telnetpot/telnetpot/internal/server"
	"github.com/telnetpot/telnetpot/internal/session"
	"github.com/telnetpot/telnetpot/internal/sink"
	"github.com/telnetpot/telnetpot/internal/store"
)

var log = logging.MustGetLogger("telnetpot")

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	// The logfile, the database and the listening socket all open
	// before confinement; afterwards the filesystem is gone.
	logfile, err := sink.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logfile.Close()

	sinks := sink.Multi{logfile}
	var writePaths []string
	if cfg.DatabasePath != "" {
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer st.Close()
		sinks = append(sinks, st)
		writePaths = append(writePaths, filepath.Dir(cfg.DatabasePath))
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.ListenAddr, err)
	}

	if err := privdrop.Apply(privdrop.Config{
		User:       cfg.DropUser,
		ChrootDir:  cfg.ChrootDir,
		WritePaths: writePaths,
	}); err != nil {
		log.Fatalf("privilege drop: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctl := session.NewController(session.Config{
		Hostname:         cfg.Hostname,
		NegotiateTimeout: cfg.NegotiateTimeout,
		AuthDelay:        cfg.AuthDelay,
		RejectDelay:      cfg.RejectDelay,
		LineMax:          cfg.LineMax,
	}, sinks)

	log.Infof("listening on %s", ln.Addr())
	if err := server.New(ctl).Serve(ctx, ln); err != nil {
		log.Fatalf("serve: %v", err)
	}
	log.Infof("shut down")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s LOGFILE\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func setupLogging(level string) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
	)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
}
