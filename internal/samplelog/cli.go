package samplelog

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/attendance/pkg/logger"
)

// SetupLogging sends logs to stdout and, unless logFile is "-", to a file.
// An empty logFile gets a timestamped name.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "-" {
		if logFile == "" {
			logFile = "sample_log_" + time.Now().Format("20060102_150405") + ".log"
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "-" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the sample-log tool.
func ShowHelp() {
	os.Stdout.WriteString(`Attendance Sample Log Tool
==========================

Generates synthetic meeting attendance logs, uploads them concurrently to the
report service and checks every JSON report against locally merged totals.

Usage:
  go run ./cmd/sample-log [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -logs int
        Number of logs to generate and upload (default 20)
  -participants int
        Participants per log (default 200)
  -workers int
        Number of concurrent uploads (default CPU cores * 2)
  -threshold float
        Minimum minutes sent with every upload (default 50)
  -seed uint
        Generator seed, 0 for a random one (default 0)
  -timeout duration
        HTTP request timeout (default 30s)
  -out string
        Directory to save the generated CSV logs (default: not saved)
  -log string
        Log file, "-" for stdout only (default: sample_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Replay with default settings
  go run ./cmd/sample-log

  # Reproducible run that keeps the generated logs
  go run ./cmd/sample-log -seed 42 -logs 5 -out ./samples -log -
`)
}
