package api

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/attendance/internal/adapters/report"
	service "github.com/okian/attendance/internal/app"
	"github.com/okian/attendance/pkg/logger"
)

// Multipart form fields accepted by POST /upload.
const (
	fieldFile      = "file"
	fieldThreshold = "threshold"
	fieldFormat    = "format"
)

// Parts of a multipart body kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// Generator renders a report from an uploaded log.
type Generator interface {
	Generate(ctx context.Context, req service.Request) (*service.Artifact, error)
}

// UploadHandler handles report requests.
type UploadHandler struct {
	gen              Generator
	defaultThreshold float64
	defaultFormat    report.Format
	maxBytes         int64
	logger           logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(gen Generator, o options) *UploadHandler {
	return &UploadHandler{
		gen:              gen,
		defaultThreshold: o.defaultThreshold,
		defaultFormat:    o.defaultFormat,
		maxBytes:         o.maxUploadBytes,
		logger:           o.logger,
	}
}

// HandleUpload handles POST /upload requests and streams back the artifact.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodInvalid))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				NewKind(op, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, h.maxBytes)))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req, err := h.parse(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	file, _, err := r.FormFile(fieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file",
			WrapKind(op, ErrBadRequest, fmt.Errorf("form field %q is required", fieldFile)))
		return
	}
	defer func() { _ = file.Close() }()
	req.Log = file

	art, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		h.writeGenerateError(r.Context(), w, op, err)
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Report-Rows", strconv.Itoa(art.Rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// parse reads the optional threshold and format fields.
func (h *UploadHandler) parse(r *http.Request) (service.Request, error) {
	req := service.Request{Threshold: h.defaultThreshold, Format: h.defaultFormat}

	if raw := strings.TrimSpace(r.FormValue(fieldThreshold)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return req, fmt.Errorf("threshold must be a non-negative number, got %q", raw)
		}
		req.Threshold = v
	}
	if raw := strings.TrimSpace(r.FormValue(fieldFormat)); raw != "" {
		f, err := report.ParseFormat(raw)
		if err != nil {
			return req, err
		}
		req.Format = f
	}
	return req, nil
}

func (h *UploadHandler) writeGenerateError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidLog):
		writeError(w, http.StatusBadRequest, "invalid_log", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrLookup):
		h.logger.Error(ctx, "identity lookup failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, "lookup_failed", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		h.logger.Error(ctx, "report generation failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
	}
}
