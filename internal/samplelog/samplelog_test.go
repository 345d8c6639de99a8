package samplelog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/attendance/internal/adapters/eventlog"
	"github.com/okian/attendance/internal/adapters/http/api"
	service "github.com/okian/attendance/internal/app"
	"github.com/okian/attendance/internal/domain/model"
	"github.com/okian/attendance/internal/domain/types"
	"github.com/okian/attendance/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		a := Generate(rand.New(rand.NewPCG(7, pcgStream)), 50)
		b := Generate(rand.New(rand.NewPCG(7, pcgStream)), 50)

		Convey("Then the same seed yields the same log", func() {
			So(a, ShouldResemble, b)
		})

		Convey("Then events are ordered by time within the meeting", func() {
			for i := 1; i < len(a); i++ {
				So(a[i].Timestamp.Before(a[i-1].Timestamp), ShouldBeFalse)
			}
			So(a[0].Timestamp.Before(MeetingStart), ShouldBeFalse)
		})

		Convey("Then every participant joins at least once", func() {
			joined := map[string]bool{}
			for _, e := range a {
				So(e.Action.Valid(), ShouldBeTrue)
				So(e.Timestamp.Nanosecond(), ShouldEqual, 0)
				if e.Action == model.Joined {
					joined[e.Person] = true
				}
			}
			So(len(joined), ShouldEqual, 50)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a generated log written as CSV", t, func() {
		events := Generate(rand.New(rand.NewPCG(3, pcgStream)), 20)
		var buf bytes.Buffer
		So(WriteCSV(context.Background(), &buf, events), ShouldBeNil)

		Convey("When it is read back by the event reader", func() {
			got, stats, err := eventlog.Read(context.Background(), &buf)

			Convey("Then the events survive unchanged", func() {
				So(err, ShouldBeNil)
				So(stats.Skipped, ShouldEqual, 0)
				So(got, ShouldResemble, events)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		events := []model.Event{{Person: "A", Action: model.Joined, Timestamp: MeetingStart}}

		So(errors.Is(WriteCSV(ctx, io.Discard, events), context.Canceled), ShouldBeTrue)
	})
}

func TestCompare(t *testing.T) {
	Convey("Given expected totals", t, func() {
		expected := map[string]float64{"Alice": 60, "Bob": 55.5}

		Convey("Then a matching report passes", func() {
			So(compare(expected, []types.Row{{Name: "Bob", TotalMinutes: 55.5}, {Name: "Alice", TotalMinutes: 60}}), ShouldBeNil)
		})

		Convey("Then missing, extra and wrong rows are mismatches", func() {
			So(errors.Is(compare(expected, []types.Row{{Name: "Alice", TotalMinutes: 60}}), ErrMismatch), ShouldBeTrue)
			So(errors.Is(compare(expected, []types.Row{{Name: "Alice", TotalMinutes: 60}, {Name: "Carol", TotalMinutes: 55.5}}), ErrMismatch), ShouldBeTrue)
			So(errors.Is(compare(expected, []types.Row{{Name: "Alice", TotalMinutes: 61}, {Name: "Bob", TotalMinutes: 55.5}}), ErrMismatch), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a report service behind an HTTP server", t, func() {
		mux := http.NewServeMux()
		svc := service.New()
		api.NewServer(svc, svc, api.WithUploadRateLimit(0)).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := &Config{
			BaseURL:      srv.URL,
			Logs:         6,
			Participants: 40,
			Workers:      3,
			Threshold:    30,
			Timeout:      5 * time.Second,
			Seed:         42,
			OutputDir:    t.TempDir(),
		}

		Convey("When a run replays generated logs", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every report matches the local totals", func() {
				So(err, ShouldBeNil)
				So(stats.LogsGenerated, ShouldEqual, 6)
				So(stats.Uploaded, ShouldEqual, 6)
				So(stats.Successful, ShouldEqual, 6)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Mismatched, ShouldEqual, 0)
				So(svc.GetStats()["reportsGenerated"], ShouldEqual, int64(6))
			})

			Convey("Then the generated logs are saved", func() {
				files, _ := filepath.Glob(filepath.Join(cfg.OutputDir, "attendance-*.csv"))
				So(len(files), ShouldEqual, 6)
			})
		})
	})

	Convey("Given a service that returns empty reports", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
		mux.HandleFunc("/upload", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("[]"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := &Config{BaseURL: srv.URL, Logs: 2, Participants: 10, Workers: 2, Timeout: time.Second, Seed: 1}

		Convey("Then the run reports mismatches", func() {
			stats, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(stats.Mismatched, ShouldEqual, 2)
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		Convey("Then the run stops before generating", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, Logs: 1, Participants: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
			So(stats.LogsGenerated, ShouldEqual, 0)
		})
	})
}
