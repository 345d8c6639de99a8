// Package model contains domain models passed between layers.
package model

import "time"

// Action is the kind of attendance event recorded in a meeting log.
type Action string

// Actions understood by the session reconstructor.
const (
	Joined Action = "Joined"
	Left   Action = "Left"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == Joined || a == Left
}

// Event is one row of an attendance log.
type Event struct {
	Person    string    // display name as exported by the meeting platform
	Action    Action    // Joined or Left
	Timestamp time.Time // when the action happened
}

// Session is a presence interval for one person built from a Joined/Left pair.
// A zero Start or End means the paired event was missing (a partial session).
type Session struct {
	Person string
	Start  time.Time
	End    time.Time
}

// Complete reports whether both ends of the session are known.
func (s Session) Complete() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// Duration returns End-Start for complete sessions and 0 otherwise.
// The result is negative when the log recorded the leave before the join.
func (s Session) Duration() time.Duration {
	if !s.Complete() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// PersonTotal is the merged presence of one person.
type PersonTotal struct {
	Person       string
	TotalMinutes float64
}

// Identity is the roster data attached to a person.
type Identity struct {
	Section string
	RollNo  string
}

// EnrichedRow is a PersonTotal joined with roster data.
// Identity is nil when the roster has no entry for the person.
type EnrichedRow struct {
	Person       string
	TotalMinutes float64
	Identity     *Identity
}

// Section returns the section or "" when unmatched.
func (r EnrichedRow) Section() string {
	if r.Identity == nil {
		return ""
	}
	return r.Identity.Section
}

// RollNo returns the roll number or "" when unmatched.
func (r EnrichedRow) RollNo() string {
	if r.Identity == nil {
		return ""
	}
	return r.Identity.RollNo
}
