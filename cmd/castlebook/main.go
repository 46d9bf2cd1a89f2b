// Package main is the entry point for the castle book viewer.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/config"
	"github.com/Faultbox/castle-book/internal/logger"
	"github.com/Faultbox/castle-book/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fatal("Config error", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal("Logger error", err)
	}

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		fatal("Viewer error", err)
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	logger.Info("=== Castle Book ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		return err
	}
	logger.Info("viewer closed normally")
	return nil
}

// fatal reports err on stderr and in a dialog box, then exits.
func fatal(title string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", title, err)
	dialog.Message("%v", err).Title("Castle Book: " + title).Error()
	os.Exit(1)
}
