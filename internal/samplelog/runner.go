package samplelog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/attendance/internal/domain/merge"
	"github.com/okian/attendance/internal/domain/sessions"
	"github.com/okian/attendance/internal/domain/threshold"
	"github.com/okian/attendance/internal/domain/types"
	"github.com/okian/attendance/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Second PCG stream word, so a seed alone fixes the sequence.
const pcgStream = 0x9e3779b97f4a7c15

// ErrMismatch is returned when a report disagrees with the locally merged totals.
var ErrMismatch = errors.New("report mismatch")

// sample is one generated log with the rows the service should return.
type sample struct {
	name     string
	data     []byte
	expected map[string]float64
}

// Run generates cfg.Logs logs, uploads them concurrently and checks every
// report against totals merged locally.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("samplelog")

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	runID := uuid.NewString()[:8]

	log.Info(ctx, "starting sample-log run",
		logger.String("runID", runID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("logs", cfg.Logs),
		logger.Int("participants", cfg.Participants),
		logger.Int("workers", cfg.Workers),
		logger.Float64("threshold", cfg.Threshold),
		logger.Any("seed", seed))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	samples, err := generateSamples(ctx, cfg, seed, runID)
	if err != nil {
		return stats, fmt.Errorf("log generation failed: %w", err)
	}
	stats.LogsGenerated = len(samples)

	if cfg.OutputDir != "" {
		if err := saveSamples(cfg.OutputDir, samples); err != nil {
			log.Warn(ctx, "failed to save logs", logger.Error(err))
		}
	}

	var uploaded, successful, failed, mismatched, rows atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, s := range samples {
		g.Go(func() error {
			uploaded.Add(1)
			got, err := client.Upload(gctx, s.name, s.data, cfg.Threshold)
			if err != nil {
				failed.Add(1)
				log.Error(gctx, "upload failed", logger.String("log", s.name), logger.Error(err))
				return nil
			}
			rows.Add(int64(len(got)))
			if err := compare(s.expected, got); err != nil {
				mismatched.Add(1)
				log.Error(gctx, "report mismatch", logger.String("log", s.name), logger.Error(err))
				return nil
			}
			successful.Add(1)
			if cfg.Verbose {
				log.Info(gctx, "report verified", logger.String("log", s.name), logger.Int("rows", len(got)))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Uploaded = int(uploaded.Load())
	stats.Successful = int(successful.Load())
	stats.Failed = int(failed.Load())
	stats.Mismatched = int(mismatched.Load())
	stats.RowsReported = int(rows.Load())
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Failed > 0 || stats.Mismatched > 0 {
		return stats, fmt.Errorf("%d failed, %d mismatched of %d uploads", stats.Failed, stats.Mismatched, stats.Uploaded)
	}
	return stats, nil
}

func generateSamples(ctx context.Context, cfg *Config, seed uint64, runID string) ([]sample, error) {
	rng := rand.New(rand.NewPCG(seed, pcgStream))
	out := make([]sample, 0, cfg.Logs)
	for i := range cfg.Logs {
		events := Generate(rng, cfg.Participants)

		var buf bytes.Buffer
		if err := WriteCSV(ctx, &buf, events); err != nil {
			return nil, err
		}

		expected := make(map[string]float64)
		for _, t := range threshold.Filter(merge.Totals(sessions.Reconstruct(events)), cfg.Threshold) {
			expected[t.Person] = round2(t.TotalMinutes)
		}
		out = append(out, sample{
			name:     fmt.Sprintf("attendance-%s-%03d.csv", runID, i+1),
			data:     buf.Bytes(),
			expected: expected,
		})
	}
	return out, nil
}

// compare checks that got holds exactly the expected people and minutes.
func compare(expected map[string]float64, got []types.Row) error {
	if len(got) != len(expected) {
		return fmt.Errorf("%w: %d rows, want %d", ErrMismatch, len(got), len(expected))
	}
	for _, r := range got {
		want, ok := expected[r.Name]
		if !ok {
			return fmt.Errorf("%w: unexpected row %q", ErrMismatch, r.Name)
		}
		if math.Abs(want-r.TotalMinutes) > 0.005 {
			return fmt.Errorf("%w: %q has %.2f minutes, want %.2f", ErrMismatch, r.Name, r.TotalMinutes, want)
		}
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func saveSamples(dir string, samples []sample) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, s := range samples {
		if err := os.WriteFile(filepath.Join(dir, s.name), s.data, filePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.name, err)
		}
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var uploadsPerSecond float64
	if stats.Duration > 0 {
		uploadsPerSecond = float64(stats.Uploaded) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("logsGenerated", stats.LogsGenerated),
		logger.Int("uploaded", stats.Uploaded),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("rowsReported", stats.RowsReported),
		logger.Duration("duration", stats.Duration),
		logger.Float64("uploadsPerSecond", uploadsPerSecond))
}
