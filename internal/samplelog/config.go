// Package samplelog generates synthetic meeting attendance logs and replays
// them against a running report service.
package samplelog

import "time"

// Config holds configuration for a sample-log run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Logs         int           // Number of logs to generate and upload
	Participants int           // Participants per log
	Workers      int           // Concurrent uploads
	Threshold    float64       // Threshold sent with every upload
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Generator seed; 0 picks one from the clock
	OutputDir    string        // Directory for generated CSV files; empty skips saving
	Verbose      bool          // Log every upload
}

// Stats holds run statistics.
type Stats struct {
	LogsGenerated int
	Uploaded      int
	Successful    int
	Failed        int
	Mismatched    int
	RowsReported  int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
