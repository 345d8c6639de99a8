// Package merge totals presence time by collapsing overlapping and
// back-to-back sessions with a sweep over start-sorted intervals.
package merge

import (
	"slices"
	"time"

	"github.com/okian/attendance/internal/domain/model"
)

// Duration returns the total time covered by the union of a person's sessions.
//
// Partial sessions are ignored. Sessions are swept in (start, end) order; a
// session whose start is at or before the open run's end joins that run, so a
// rejoin at the exact moment of a leave counts as continuous presence. Sessions
// that end before they start are not corrected and may subtract from the total.
func Duration(sessions []model.Session) time.Duration {
	complete := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Complete() {
			complete = append(complete, s)
		}
	}
	if len(complete) == 0 {
		return 0
	}

	// Ordering ties by end keeps the result independent of input order.
	slices.SortFunc(complete, func(a, b model.Session) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	var total time.Duration
	runStart, runEnd := complete[0].Start, complete[0].End
	for _, s := range complete[1:] {
		if !s.Start.After(runEnd) {
			if s.End.After(runEnd) {
				runEnd = s.End
			}
			continue
		}
		total += runEnd.Sub(runStart)
		runStart, runEnd = s.Start, s.End
	}
	total += runEnd.Sub(runStart)
	return total
}

// Totals computes one PersonTotal per person in byPerson, ordered by name.
// People whose sessions are all partial are kept with a zero total.
func Totals(byPerson map[string][]model.Session) []model.PersonTotal {
	people := make([]string, 0, len(byPerson))
	for person := range byPerson {
		people = append(people, person)
	}
	slices.Sort(people)

	totals := make([]model.PersonTotal, len(people))
	for i, person := range people {
		totals[i] = model.PersonTotal{
			Person:       person,
			TotalMinutes: Duration(byPerson[person]).Minutes(),
		}
	}
	return totals
}
