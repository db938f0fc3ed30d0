package internal

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "cursor-vault",
})

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// EventLog is a best-effort append-only sink for store lifecycle events
// (copies, record counts, per-family deletions, derivation failures). A nil
// EventLog and a failed open both behave as a disabled sink; write failures
// are swallowed so logging can never break a derivation.
type EventLog struct {
	sink *log.Logger
}

// NewEventLog opens the sink file for appending. On any error the returned
// EventLog is disabled rather than failing the caller.
func NewEventLog(path string) *EventLog {
	if path == "" {
		return &EventLog{}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		LogDebug("event log disabled: %v", err)
		return &EventLog{}
	}
	sink := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return &EventLog{sink: sink}
}

// Event records one lifecycle event.
func (e *EventLog) Event(format string, args ...interface{}) {
	if e == nil || e.sink == nil {
		return
	}
	e.sink.Infof(format, args...)
}
