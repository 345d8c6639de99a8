package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

type csvWriter struct{}

func (csvWriter) ContentType() string { return "text/csv; charset=utf-8" }
func (csvWriter) Extension() string   { return "csv" }

func (csvWriter) Write(ctx context.Context, w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("%w: csv: %w", ErrRender, err)
	}
	for _, row := range r.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(cells(row)); err != nil {
			return fmt.Errorf("%w: csv: %w", ErrRender, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: csv: %w", ErrRender, err)
	}
	return nil
}
