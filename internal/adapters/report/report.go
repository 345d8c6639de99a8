// Package report renders enriched attendance rows into downloadable artifacts.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/attendance/internal/domain/model"
	"github.com/okian/attendance/internal/domain/types"
)

// Format is a caller supplied output format token.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

// Column headings shared by the tabular formats.
var Columns = []string{"Full Name", "Section", "Roll No", "Duration (min)"}

// Report is the input to a Writer.
type Report struct {
	Title       string
	Threshold   float64
	GeneratedAt time.Time
	Rows        []model.EnrichedRow // already filtered and sorted
}

// Writer renders a Report.
type Writer interface {
	Write(ctx context.Context, w io.Writer, r Report) error
	// ContentType is the MIME type of the rendered artifact.
	ContentType() string
	// Extension is the file extension without the dot.
	Extension() string
}

// ParseFormat maps a token to a Format, case-insensitively. "xlsx" is an alias of excel.
func ParseFormat(token string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(token))); f {
	case FormatCSV, FormatPDF, FormatExcel, FormatJSON:
		return f, nil
	case "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, token)
	}
}

// New returns the Writer for f.
func New(f Format) (Writer, error) {
	switch f {
	case FormatCSV:
		return csvWriter{}, nil
	case FormatPDF:
		return pdfWriter{}, nil
	case FormatExcel:
		return excelWriter{}, nil
	case FormatJSON:
		return jsonWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Rows converts enriched rows to their serialisable shape.
func Rows(rows []model.EnrichedRow) []types.Row {
	out := make([]types.Row, len(rows))
	for i, r := range rows {
		out[i] = types.Row{
			Name:         r.Person,
			Section:      r.Section(),
			RollNo:       r.RollNo(),
			TotalMinutes: r.TotalMinutes,
		}
	}
	return out
}

func minutes(m float64) string {
	return strconv.FormatFloat(m, 'f', 2, 64)
}

func cells(r model.EnrichedRow) []string {
	return []string{r.Person, r.Section(), r.RollNo(), minutes(r.TotalMinutes)}
}
