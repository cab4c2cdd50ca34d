package main

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger creates a logger with timestamp formatting, filtering at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// loggerFor builds the logger implied by the global --quiet/--verbose flags.
func loggerFor(cmd *cobra.Command, w io.Writer) *log.Logger {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	level := log.InfoLevel
	if quiet {
		level = log.ErrorLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	return newLogger(w, level)
}
