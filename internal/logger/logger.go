// Package logger configures the process-wide charmbracelet logger.
// Output always goes to stderr: stdout carries the MCP protocol.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config value to a log level, defaulting to info
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New builds a logger writing to w
func New(w io.Writer, level string, json bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           ParseLevel(level),
	})
	if json {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

// Setup installs a stderr logger as the package default
func Setup(level string, json bool) {
	log.SetDefault(New(os.Stderr, level, json))
}
