// Package types contains common types used across the application
package types

// Row is the JSON shape of one report line.
type Row struct {
	Name         string  `json:"name"`
	Section      string  `json:"section,omitempty"`
	RollNo       string  `json:"roll_no,omitempty"`
	TotalMinutes float64 `json:"total_minutes"`
}
