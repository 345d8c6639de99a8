// Package service provides the report generation service used by the HTTP API and CLI.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/attendance/internal/adapters/eventlog"
	"github.com/okian/attendance/internal/adapters/identity"
	"github.com/okian/attendance/internal/adapters/report"
	"github.com/okian/attendance/internal/domain/merge"
	"github.com/okian/attendance/internal/domain/model"
	"github.com/okian/attendance/internal/domain/sessions"
	"github.com/okian/attendance/internal/domain/threshold"
	"github.com/okian/attendance/pkg/logger"
	"github.com/okian/attendance/pkg/metrics"
)

// DefaultTitle heads paginated reports unless WithReportTitle overrides it.
const DefaultTitle = "Meeting Attendance Report"

// Request is one report generation call.
type Request struct {
	Log       io.Reader     // raw attendance export
	Threshold float64       // minimum total minutes, inclusive
	Format    report.Format // output format
}

// Artifact is a rendered report ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// Service turns attendance logs into reports. Generate keeps all state per call,
// so one Service may serve concurrent requests.
type Service struct {
	mu sync.RWMutex

	lookup identity.Lookup
	title  string
	clock  func() time.Time

	started bool
	logger  logger.Logger

	generated atomic.Int64
	failed    atomic.Int64
	lastAt    atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLookup sets the identity backend. The service closes it on Stop when it
// implements io.Closer.
func WithLookup(l identity.Lookup) Option {
	return func(s *Service) {
		if l != nil {
			s.lookup = l
		}
	}
}

// WithReportTitle sets the title printed on paginated reports.
func WithReportTitle(title string) Option {
	return func(s *Service) {
		if title != "" {
			s.title = title
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a Service. Without WithLookup every name is a roster miss.
func New(opts ...Option) *Service {
	s := &Service{
		lookup: identity.NewMemoryStore(),
		title:  DefaultTitle,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.started = true
	s.logger.Info(ctx, "attendance service started", logger.String("title", s.title))
	return nil
}

// Stop releases the identity backend.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.lookup.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing identity store", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "attendance service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"reportsGenerated": s.generated.Load(),
		"reportsFailed":    s.failed.Load(),
	}
	if last := s.lastAt.Load(); last > 0 {
		stats["lastReportAt"] = time.Unix(last, 0).UTC().Format(time.RFC3339)
	}
	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Nop()
	}
	return s.logger
}

// Generate runs read, reconstruct, merge, filter, lookup and render for one log.
func (s *Service) Generate(ctx context.Context, req Request) (*Artifact, error) {
	art, err := s.generate(ctx, req)
	format, outcome := string(req.Format), metrics.OutcomeSuccess
	if errors.Is(err, ErrUnknownFormat) {
		format = "unknown"
	}
	if err != nil {
		outcome = metrics.OutcomeFailure
		s.failed.Add(1)
		s.log().Warn(ctx, "report generation failed",
			logger.String("format", string(req.Format)),
			logger.Error(err))
	} else {
		s.generated.Add(1)
		now := s.clock().Unix()
		s.lastAt.Store(now)
		metrics.UpdateLastReport(now)
	}
	metrics.RecordReport(format, outcome)
	return art, err
}

func (s *Service) generate(ctx context.Context, req Request) (*Artifact, error) {
	const op = "service.generate"
	log := s.log()

	if req.Log == nil {
		return nil, fmt.Errorf("%s: %w: missing attendance log", op, ErrInvalidRequest)
	}
	if req.Threshold < 0 || math.IsNaN(req.Threshold) || math.IsInf(req.Threshold, 0) {
		return nil, fmt.Errorf("%s: %w: threshold must be a non-negative number", op, ErrInvalidRequest)
	}
	writer, err := report.New(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnknownFormat, err)
	}

	stage := time.Now()
	events, st, err := eventlog.Read(ctx, req.Log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidLog, err)
	}
	metrics.RecordEventRows(st.Accepted, st.Skipped)
	stage = observe(metrics.StageRead, stage)

	byPerson := sessions.Reconstruct(events)
	stage = observe(metrics.StageReconstruct, stage)

	totals := merge.Totals(byPerson)
	stage = observe(metrics.StageMerge, stage)

	kept := threshold.Filter(totals, req.Threshold)
	metrics.RecordParticipants(len(totals), len(kept))
	stage = observe(metrics.StageFilter, stage)

	log.Debug(ctx, "attendance aggregated",
		logger.Int("rows", st.Rows),
		logger.Int("skipped", st.Skipped),
		logger.Int("participants", len(totals)),
		logger.Int("retained", len(kept)))

	var ids map[string]model.Identity
	if len(kept) > 0 {
		ids, err = s.lookup.Lookup(ctx, identity.Names(kept))
		if err != nil {
			metrics.RecordLookupError()
			return nil, fmt.Errorf("%s: %w: %w", op, ErrLookup, err)
		}
		metrics.RecordLookupMisses(len(kept) - len(ids))
	}
	rows := identity.Enrich(kept, ids)
	identity.SortRows(rows)
	stage = observe(metrics.StageLookup, stage)

	now := s.clock()
	var buf bytes.Buffer
	err = writer.Write(ctx, &buf, report.Report{
		Title:       s.title,
		Threshold:   req.Threshold,
		GeneratedAt: now,
		Rows:        rows,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRender, err)
	}
	observe(metrics.StageRender, stage)
	metrics.RecordReportRows(len(rows))

	art := &Artifact{
		Filename:    Filename(now, writer.Extension()),
		ContentType: writer.ContentType(),
		Data:        buf.Bytes(),
		Rows:        len(rows),
	}
	log.Info(ctx, "report generated",
		logger.String("file", art.Filename),
		logger.Int("rows", art.Rows),
		logger.Float64("threshold", req.Threshold))
	return art, nil
}

// Filename names an artifact "attendance-<yyyymmdd-hhmmss>-<id>.<ext>".
func Filename(at time.Time, ext string) string {
	return fmt.Sprintf("attendance-%s-%s.%s", at.Format("20060102-150405"), uuid.NewString()[:8], ext)
}

func observe(stage string, since time.Time) time.Time {
	now := time.Now()
	metrics.RecordStageLatency(stage, float64(now.Sub(since).Microseconds())/1000)
	return now
}
