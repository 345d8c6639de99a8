// Package sessions pairs Joined and Left events into presence sessions.
//
// Pairing is a full outer equi-join on the person's name, not a chronological
// walk: a person with m joins and n leaves gets m*n sessions, and a person seen
// on one side only gets one partial session per event. Overlapping and
// duplicate sessions produced this way are absorbed by the merge step.
package sessions

import (
	"time"

	"github.com/okian/attendance/internal/domain/model"
)

// Reconstruct groups events by person and joins the Joined stream with the
// Left stream. Events with other actions are ignored. Within a person, sessions
// are ordered join-major, each side in order of appearance.
func Reconstruct(events []model.Event) map[string][]model.Session {
	joins := make(map[string][]time.Time)
	leaves := make(map[string][]time.Time)
	for _, e := range events {
		switch e.Action {
		case model.Joined:
			joins[e.Person] = append(joins[e.Person], e.Timestamp)
		case model.Left:
			leaves[e.Person] = append(leaves[e.Person], e.Timestamp)
		}
	}

	out := make(map[string][]model.Session, len(joins)+len(leaves))
	for person, starts := range joins {
		ends := leaves[person]
		if len(ends) == 0 {
			partial := make([]model.Session, len(starts))
			for i, start := range starts {
				partial[i] = model.Session{Person: person, Start: start}
			}
			out[person] = partial
			continue
		}

		paired := make([]model.Session, 0, len(starts)*len(ends))
		for _, start := range starts {
			for _, end := range ends {
				paired = append(paired, model.Session{Person: person, Start: start, End: end})
			}
		}
		out[person] = paired
	}

	for person, ends := range leaves {
		if _, ok := joins[person]; ok {
			continue
		}
		partial := make([]model.Session, len(ends))
		for i, end := range ends {
			partial[i] = model.Session{Person: person, End: end}
		}
		out[person] = partial
	}
	return out
}
