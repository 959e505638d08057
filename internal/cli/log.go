// Package cli implements the mondrian command-line interface.
//
// Running mondrian with no subcommand generates a composition; the
// subcommands inspect palettes and partition trees, print the effective
// configuration, browse the local gallery, serve compositions over HTTP and
// manage the artifact cache. The CLI is built using cobra and logs through
// charmbracelet/log; user-facing status lines are styled with lipgloss.
//
// # Commands
//
//   - generate: Paint a composition and write it in one or more formats
//   - palette: Show the effective palette, optionally sampling it
//   - tree: Draw the partition tree with Graphviz
//   - config: Print or write the effective TOML configuration
//   - gallery: List, show, replay and delete recorded compositions
//   - serve: Serve compositions, the gallery and metrics over HTTP
//   - cache: Manage the rendered artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level along with the elapsed time, rounded to the
// millisecond. Example output: "Rendered tree (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
