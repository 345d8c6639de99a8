// Command attendance-report builds an attendance report from a log file
// without running the HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/okian/attendance/internal/adapters/identity"
	"github.com/okian/attendance/internal/adapters/report"
	app "github.com/okian/attendance/internal/app"
	"github.com/okian/attendance/internal/config"
	"github.com/okian/attendance/pkg/logger"
)

const outputPermission = 0644

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Stderr.WriteString("attendance-report: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("attendance-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in        = fs.String("in", "", "Attendance log to read (required)")
		threshold = fs.Float64("threshold", -1, "Minimum total minutes, inclusive (default: configured default)")
		format    = fs.String("format", "", "Output format: csv, pdf, excel or json (default: configured default)")
		out       = fs.String("out", "", "Output file (default: generated name in the current directory)")
		roster    = fs.String("roster", "", "Roster CSV with name,section,rollno; overrides the configured identity store")
		verbose   = fs.Bool("verbose", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(stderr)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	level := "warn"
	if *verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	log := logger.Get()

	if *threshold < 0 {
		*threshold = cfg.DefaultThresholdMinutes
	}
	if *format == "" {
		*format = cfg.DefaultFormat
	}
	f, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, *roster, log)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithLookup(store),
		app.WithReportTitle(cfg.ReportTitle),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer svc.Stop()

	file, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer file.Close()

	art, err := svc.Generate(ctx, app.Request{Log: file, Threshold: *threshold, Format: f})
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = art.Filename
	}
	if err := os.WriteFile(path, art.Data, outputPermission); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stdout, "%s: %d rows\n", filepath.Clean(path), art.Rows)
	return nil
}

// openStore opens the configured backend, or a memory store seeded from
// roster when one is given.
func openStore(ctx context.Context, cfg *config.Config, roster string, log logger.Logger) (identity.Store, error) {
	if roster != "" {
		local := *cfg
		local.IdentityDriver = config.DriverMemory
		local.IdentityRosterFile = roster
		cfg = &local
	}
	return identity.Open(ctx, cfg, log)
}
