// Package rvlog configures the single *logrus.Logger shared by cmd/rv32's
// subcommands, in the teacher's "plain, unadorned log line" register
// (bassosimone-risc32's cmd/*/main.go all do `log.SetFlags(0)` plus
// `log.Printf`/`log.Fatal`) backed by logrus instead of the standard
// library logger.
package rvlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger writing plain text (no timestamps, matching the
// teacher's SetFlags(0)) to stderr at the given verbosity. verbose=true
// selects debug level; otherwise info.
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    false,
	})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
