package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/attendance/internal/adapters/report"
	"github.com/okian/attendance/internal/domain/model"
	"github.com/okian/attendance/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleReport(rows ...model.EnrichedRow) report.Report {
	return report.Report{
		Title:       "CS101 Attendance",
		Threshold:   50,
		GeneratedAt: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
		Rows:        rows,
	}
}

var (
	alice = model.EnrichedRow{Person: "Alice", TotalMinutes: 60, Identity: &model.Identity{Section: "A", RollNo: "12"}}
	zoe   = model.EnrichedRow{Person: "Zoë, Jr.", TotalMinutes: 50.5}
)

func render(f report.Format, r report.Report) ([]byte, report.Writer) {
	w, err := report.New(f)
	So(err, ShouldBeNil)
	var buf bytes.Buffer
	So(w.Write(context.Background(), &buf, r), ShouldBeNil)
	return buf.Bytes(), w
}

func TestParseFormat(t *testing.T) {
	Convey("Given format tokens", t, func() {
		cases := map[string]report.Format{
			"csv":   report.FormatCSV,
			" PDF ": report.FormatPDF,
			"excel": report.FormatExcel,
			"XLSX":  report.FormatExcel,
			"json":  report.FormatJSON,
		}
		for token, want := range cases {
			got, err := report.ParseFormat(token)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		Convey("Then unknown tokens are rejected", func() {
			_, err := report.ParseFormat("docx")
			So(errors.Is(err, report.ErrUnknownFormat), ShouldBeTrue)
			_, err = report.New("docx")
			So(errors.Is(err, report.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestCSVWriter(t *testing.T) {
	Convey("Given a CSV writer", t, func() {
		Convey("When rendering rows", func() {
			out, w := render(report.FormatCSV, sampleReport(alice, zoe))

			Convey("Then it writes the header, quoted names and two decimals", func() {
				So(w.Extension(), ShouldEqual, "csv")
				So(w.ContentType(), ShouldStartWith, "text/csv")
				So(string(out), ShouldEqual,
					"Full Name,Section,Roll No,Duration (min)\n"+
						"Alice,A,12,60.00\n"+
						"\"Zoë, Jr.\",,,50.50\n")
			})
		})

		Convey("When there are no rows", func() {
			out, _ := render(report.FormatCSV, sampleReport())

			Convey("Then only the header is written", func() {
				So(string(out), ShouldEqual, "Full Name,Section,Roll No,Duration (min)\n")
			})
		})
	})
}

func TestJSONWriter(t *testing.T) {
	Convey("Given a JSON writer", t, func() {
		Convey("When rendering rows", func() {
			out, w := render(report.FormatJSON, sampleReport(alice, model.EnrichedRow{Person: "Bob", TotalMinutes: 10.5 + 1.0/300}))
			var rows []types.Row
			So(json.Unmarshal(out, &rows), ShouldBeNil)

			Convey("Then rows carry identity when matched and rounded minutes", func() {
				So(w.ContentType(), ShouldEqual, "application/json")
				So(rows, ShouldResemble, []types.Row{
					{Name: "Alice", Section: "A", RollNo: "12", TotalMinutes: 60},
					{Name: "Bob", TotalMinutes: 10.5},
				})
				So(string(out), ShouldNotContainSubstring, "roll_no\": \"\"")
			})
		})

		Convey("When there are no rows", func() {
			out, _ := render(report.FormatJSON, sampleReport())

			Convey("Then an empty array is written", func() {
				So(strings.TrimSpace(string(out)), ShouldEqual, "[]")
			})
		})
	})
}

func TestExcelWriter(t *testing.T) {
	Convey("Given an Excel writer", t, func() {
		out, w := render(report.FormatExcel, sampleReport(alice, zoe))
		f, err := excelize.OpenReader(bytes.NewReader(out))
		So(err, ShouldBeNil)
		defer func() { _ = f.Close() }()

		Convey("Then the workbook has one named sheet with header and rows", func() {
			So(w.Extension(), ShouldEqual, "xlsx")
			So(f.GetSheetList(), ShouldResemble, []string{report.SheetName})

			rows, err := f.GetRows(report.SheetName)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[0], ShouldResemble, report.Columns)
			So(rows[1][0], ShouldEqual, "Alice")
			So(rows[1][3], ShouldStartWith, "60")
			So(rows[2][0], ShouldEqual, "Zoë, Jr.")
		})
	})

	Convey("Given an empty Excel report", t, func() {
		out, _ := render(report.FormatExcel, sampleReport())
		f, err := excelize.OpenReader(bytes.NewReader(out))
		So(err, ShouldBeNil)
		defer func() { _ = f.Close() }()

		Convey("Then only the header row exists", func() {
			rows, err := f.GetRows(report.SheetName)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
		})
	})
}

func TestPDFWriter(t *testing.T) {
	Convey("Given a PDF writer", t, func() {
		Convey("When rendering enough rows to span pages", func() {
			rows := make([]model.EnrichedRow, 0, 120)
			for i := range 120 {
				rows = append(rows, model.EnrichedRow{Person: fmt.Sprintf("Student %03d", i), TotalMinutes: 55})
			}
			out, w := render(report.FormatPDF, sampleReport(rows...))

			Convey("Then a PDF document is produced", func() {
				So(w.ContentType(), ShouldEqual, "application/pdf")
				So(string(out[:5]), ShouldEqual, "%PDF-")
				So(bytes.Count(out, []byte("<</Type /Page\n")), ShouldBeGreaterThan, 1)
			})
		})

		Convey("When there are no rows", func() {
			out, _ := render(report.FormatPDF, sampleReport())

			Convey("Then a single page is still produced", func() {
				So(string(out[:5]), ShouldEqual, "%PDF-")
			})
		})
	})
}

func TestWriterHonoursCancellation(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w, err := report.New(report.FormatCSV)
		So(err, ShouldBeNil)

		Convey("Then rendering rows stops", func() {
			err := w.Write(ctx, &bytes.Buffer{}, sampleReport(alice))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
