// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// output is where component loggers write. Server mode keeps stdout for the
// protocol, so everything logs to stderr.
var output io.Writer = os.Stderr

// Setup points the default logger and later component loggers at w and sets
// the global level: Debug with timestamps when debug is set, Warn otherwise.
func Setup(w io.Writer, debug bool) {
	output = w
	log.SetOutput(w)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}

// New creates a new default charm log.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(output, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() == log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
