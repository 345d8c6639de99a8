package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/attendance/internal/domain/types"
)

const attendanceLog = "Full Name,User Action,Timestamp\n" +
	"Alice,Joined,\"3/4/2024, 10:00:00 AM\"\n" +
	"Alice,Left,\"3/4/2024, 11:00:00 AM\"\n" +
	"Bob,Joined,\"3/4/2024, 10:00:00 AM\"\n" +
	"Bob,Left,\"3/4/2024, 10:20:00 AM\"\n" +
	"Carol,Joined,\"3/4/2024, 10:05:00 AM\"\n" +
	"Carol,Left,\"3/4/2024, 11:05:00 AM\"\n"

const roster = "name,section,rollno\nCarol,A,2\nAlice,A,10\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	convey.Convey("Given a log and a roster on disk", t, func() {
		dir := t.TempDir()
		in := writeFile(t, dir, "log.csv", attendanceLog)
		rosterFile := writeFile(t, dir, "roster.csv", roster)
		out := filepath.Join(dir, "report.json")
		ctx := context.Background()

		convey.Convey("When a JSON report is requested", func() {
			var stdout bytes.Buffer
			err := run(ctx, []string{"-in", in, "-roster", rosterFile, "-threshold", "50", "-format", "json", "-out", out}, &stdout, io.Discard)

			convey.Convey("Then enriched and sorted rows are written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "2 rows")

				data, readErr := os.ReadFile(out)
				convey.So(readErr, convey.ShouldBeNil)
				var rows []types.Row
				convey.So(json.Unmarshal(data, &rows), convey.ShouldBeNil)
				convey.So(rows, convey.ShouldResemble, []types.Row{
					{Name: "Carol", Section: "A", RollNo: "2", TotalMinutes: 60},
					{Name: "Alice", Section: "A", RollNo: "10", TotalMinutes: 60},
				})
			})
		})

		convey.Convey("When the format is not supported", func() {
			err := run(ctx, []string{"-in", in, "-format", "docx", "-out", out}, io.Discard, io.Discard)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the roster is missing", func() {
			err := run(ctx, []string{"-in", in, "-roster", filepath.Join(dir, "nope.csv"), "-out", out}, io.Discard, io.Discard)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the log does not exist", func() {
			err := run(ctx, []string{"-in", filepath.Join(dir, "nope.csv"), "-out", out}, io.Discard, io.Discard)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given no input flag", t, func() {
		err := run(context.Background(), nil, io.Discard, io.Discard)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldContainSubstring, "-in")
	})

	convey.Convey("Given -help", t, func() {
		err := run(context.Background(), []string{"-help"}, io.Discard, io.Discard)
		convey.So(errors.Is(err, flag.ErrHelp), convey.ShouldBeTrue)
	})
}
