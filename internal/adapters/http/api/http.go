// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/okian/attendance/internal/adapters/report"
	"github.com/okian/attendance/pkg/logger"
)

// Defaults applied when no Option overrides them.
const (
	defaultThresholdMinutes = 50
	defaultMaxUploadBytes   = 32 << 20
)

type options struct {
	defaultThreshold float64
	defaultFormat    report.Format
	maxUploadBytes   int64
	uploadRateLimit  int
	logger           logger.Logger
}

// Option configures the Server.
type Option func(*options)

// WithDefaultThreshold sets the threshold used when an upload omits one.
func WithDefaultThreshold(minutes float64) Option {
	return func(o *options) {
		if minutes >= 0 {
			o.defaultThreshold = minutes
		}
	}
}

// WithDefaultFormat sets the format used when an upload omits one.
func WithDefaultFormat(f report.Format) Option {
	return func(o *options) {
		if f != "" {
			o.defaultFormat = f
		}
	}
}

// WithMaxUploadBytes caps the request body of POST /upload.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}

// WithUploadRateLimit allows n uploads per client IP per minute. 0 disables limiting.
func WithUploadRateLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.uploadRateLimit = n
		}
	}
}

// WithLogger sets the logger for handler failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	uploadHandler *UploadHandler
	opts          options
}

// NewServer creates a new API server with all handlers.
func NewServer(gen Generator, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{
		defaultThreshold: defaultThresholdMinutes,
		defaultFormat:    report.FormatCSV,
		maxUploadBytes:   defaultMaxUploadBytes,
		logger:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		uploadHandler: NewUploadHandler(gen, o),
		opts:          o,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	upload := http.Handler(http.HandlerFunc(s.uploadHandler.HandleUpload))
	if s.opts.uploadRateLimit > 0 {
		upload = httprate.Limit(
			s.opts.uploadRateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api.upload", ErrRateLimited))
			}),
		)(upload)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/upload", MetricsMiddleware(upload.ServeHTTP, "upload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
