package main

import (
	"os"

	"hiverouter.dev/lsrouted/daemon"
	"hiverouter.dev/lsrouted/internal/config"
	"hiverouter.dev/lsrouted/internal/logger"
	"hiverouter.dev/lsrouted/routing"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		// A bare stderr print here since the logger needs a RouterID that
		// config.Load itself couldn't resolve.
		os.Stderr.WriteString("lsrouted: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.RouterID, os.Stdout)

	d, err := daemon.New(cfg, routing.NewNetlinkInstaller(log), log)
	if err != nil {
		log.Errorf("startup failed: %v", err)
		return
	}

	log.Infof("starting with hello=%s lsa=%s tolerance=%d", cfg.HelloInterval, cfg.LSAInterval, cfg.Tolerance)

	if err := d.Run(); err != nil {
		log.Errorf("daemon exited: %v", err)
	}
}
