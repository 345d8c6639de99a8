package samplelog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/okian/attendance/internal/adapters/eventlog"
	"github.com/okian/attendance/internal/domain/model"
)

// Meeting shape.
const (
	meetingLength  = 120 * time.Minute
	maxLateJoin    = 30 * time.Minute
	minSession     = 5 * time.Minute
	maxSession     = 60 * time.Minute
	maxGap         = 10 * time.Minute
	maxGappedParts = 3
)

// Attendance patterns drawn per participant.
const (
	patternSingle = iota
	patternRejoin
	patternOverlap
	patternNoLeave
	patternGapped
	patternCount
)

// MeetingStart is the start of every generated meeting.
var MeetingStart = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// Generate builds a time-ordered attendance log for n participants. The
// log mixes single sessions, back-to-back rejoins, overlapping joins, joins
// without a leave and gapped sessions.
func Generate(rng *rand.Rand, n int) []model.Event {
	var events []model.Event
	for i := range n {
		events = append(events, participant(rng, fmt.Sprintf("Student %04d", i+1))...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

func participant(rng *rand.Rand, name string) []model.Event {
	start := MeetingStart.Add(span(rng, 0, maxLateJoin))
	ev := func(a model.Action, at time.Time) model.Event {
		return model.Event{Person: name, Action: a, Timestamp: at}
	}

	switch rng.IntN(patternCount) {
	case patternRejoin:
		mid := start.Add(span(rng, minSession, maxSession))
		end := mid.Add(span(rng, minSession, maxSession))
		return []model.Event{ev(model.Joined, start), ev(model.Left, mid), ev(model.Joined, mid), ev(model.Left, end)}
	case patternOverlap:
		second := start.Add(span(rng, 0, minSession))
		end := second.Add(span(rng, minSession, maxSession))
		return []model.Event{ev(model.Joined, start), ev(model.Joined, second), ev(model.Left, end)}
	case patternNoLeave:
		return []model.Event{ev(model.Joined, start)}
	case patternGapped:
		var out []model.Event
		at := start
		for range 1 + rng.IntN(maxGappedParts) {
			end := at.Add(span(rng, minSession, maxSession))
			out = append(out, ev(model.Joined, at), ev(model.Left, end))
			at = end.Add(span(rng, time.Second, maxGap))
		}
		return out
	default:
		end := start.Add(span(rng, minSession, meetingLength-maxLateJoin))
		return []model.Event{ev(model.Joined, start), ev(model.Left, end)}
	}
}

// span returns a whole-second duration in [lo, hi].
func span(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	secs := int64((hi - lo) / time.Second)
	return lo + time.Duration(rng.Int64N(secs+1))*time.Second
}

// WriteCSV writes events in the meeting platform's export format.
func WriteCSV(ctx context.Context, w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{eventlog.ColumnName, eventlog.ColumnAction, eventlog.ColumnTimestamp}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write([]string{e.Person, string(e.Action), e.Timestamp.Format(eventlog.TimestampLayout)}); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
