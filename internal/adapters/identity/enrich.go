package identity

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/attendance/internal/domain/model"
)

// Names returns the person names of totals in order.
func Names(totals []model.PersonTotal) []string {
	names := make([]string, len(totals))
	for i, t := range totals {
		names[i] = t.Person
	}
	return names
}

// Enrich attaches roster data to totals. Rows without a match keep a nil Identity.
func Enrich(totals []model.PersonTotal, ids map[string]model.Identity) []model.EnrichedRow {
	rows := make([]model.EnrichedRow, len(totals))
	for i, t := range totals {
		rows[i] = model.EnrichedRow{Person: t.Person, TotalMinutes: t.TotalMinutes}
		if id, ok := ids[t.Person]; ok {
			rows[i].Identity = &id
		}
	}
	return rows
}

// SortRows orders rows by section, then roll number, then name. Roll numbers
// that are both integers compare numerically. Unmatched rows go last, by name.
func SortRows(rows []model.EnrichedRow) {
	slices.SortStableFunc(rows, compareRows)
}

func compareRows(a, b model.EnrichedRow) int {
	switch {
	case a.Identity == nil && b.Identity == nil:
		return strings.Compare(a.Person, b.Person)
	case a.Identity == nil:
		return 1
	case b.Identity == nil:
		return -1
	}
	if c := strings.Compare(a.Identity.Section, b.Identity.Section); c != 0 {
		return c
	}
	if c := compareRoll(a.Identity.RollNo, b.Identity.RollNo); c != 0 {
		return c
	}
	return strings.Compare(a.Person, b.Person)
}

func compareRoll(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}
