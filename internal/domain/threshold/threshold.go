// Package threshold keeps participants whose presence meets a minimum duration.
package threshold

import "github.com/okian/attendance/internal/domain/model"

// Filter returns the totals with TotalMinutes >= minMinutes, in input order.
// The input slice is not modified.
func Filter(totals []model.PersonTotal, minMinutes float64) []model.PersonTotal {
	kept := make([]model.PersonTotal, 0, len(totals))
	for _, t := range totals {
		if t.TotalMinutes >= minMinutes {
			kept = append(kept, t)
		}
	}
	return kept
}
