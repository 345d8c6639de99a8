package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

type jsonWriter struct{}

func (jsonWriter) ContentType() string { return "application/json" }
func (jsonWriter) Extension() string   { return "json" }

// Write emits a JSON array of rows, "[]" when there are none.
func (jsonWriter) Write(_ context.Context, w io.Writer, r Report) error {
	rows := Rows(r.Rows)
	for i := range rows {
		rows[i].TotalMinutes = math.Round(rows[i].TotalMinutes*100) / 100
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("%w: json: %w", ErrRender, err)
	}
	return nil
}
