package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/attendance/internal/samplelog"
	"github.com/okian/attendance/pkg/logger"
)

// Default configuration constants.
const (
	defaultLogs         = 20
	defaultParticipants = 200
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultThreshold    = 50
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		logs         = flag.Int("logs", defaultLogs, "Number of logs to generate and upload")
		participants = flag.Int("participants", defaultParticipants, "Participants per log")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent uploads")
		threshold    = flag.Float64("threshold", defaultThreshold, "Minimum minutes sent with every upload")
		seed         = flag.Uint64("seed", 0, "Generator seed, 0 for a random one")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputDir    = flag.String("out", "", "Directory to save the generated CSV logs")
		logFile      = flag.String("log", "", "Log file, - for stdout only (default: sample_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		samplelog.ShowHelp()
		return
	}

	if err := samplelog.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &samplelog.Config{
		BaseURL:      *baseURL,
		Logs:         *logs,
		Participants: *participants,
		Workers:      *workers,
		Threshold:    *threshold,
		Timeout:      *timeout,
		Seed:         *seed,
		OutputDir:    *outputDir,
		Verbose:      *verbose,
	}

	if _, err := samplelog.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
