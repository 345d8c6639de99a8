package report

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report.
const SheetName = "Attendance"

// Built-in number format "0.00".
const numFmtTwoDecimals = 2

type excelWriter struct{}

func (excelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (excelWriter) Extension() string { return "xlsx" }

func (excelWriter) Write(ctx context.Context, w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("%w: excel: %w", ErrRender, err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("%w: excel: %w", ErrRender, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: excel: %w", ErrRender, err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return fmt.Errorf("%w: excel: %w", ErrRender, err)
	}

	for i, row := range r.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: excel: %w", ErrRender, err)
		}
		values := []any{row.Person, row.Section(), row.RollNo(), math.Round(row.TotalMinutes*100) / 100}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("%w: excel: %w", ErrRender, err)
		}
	}

	if len(r.Rows) > 0 {
		numeric, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
		if err != nil {
			return fmt.Errorf("%w: excel: %w", ErrRender, err)
		}
		last := fmt.Sprintf("D%d", len(r.Rows)+1)
		if err := f.SetCellStyle(SheetName, "D2", last, numeric); err != nil {
			return fmt.Errorf("%w: excel: %w", ErrRender, err)
		}
	}
	_ = f.SetColWidth(SheetName, "A", "A", 32)
	_ = f.SetColWidth(SheetName, "B", "D", 16)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: excel: %w", ErrRender, err)
	}
	return nil
}
