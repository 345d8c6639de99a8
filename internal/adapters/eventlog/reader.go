// Package eventlog parses meeting attendance exports into events.
package eventlog

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/okian/attendance/internal/domain/model"
)

// TimestampLayout matches "month/day/year, hour:minute:second AM/PM".
// Month, day and hour may have one or two digits.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Required column headers, compared after trimming whitespace.
const (
	ColumnName      = "Full Name"
	ColumnAction    = "User Action"
	ColumnTimestamp = "Timestamp"
)

// How often Read checks for cancellation.
const ctxCheckEvery = 1024

// Stats describes what Read did with the input rows.
type Stats struct {
	Rows     int // data rows after the header
	Accepted int // rows turned into events
	Skipped  int // rows with another action or a blank name
}

// Read parses an attendance log. Input may be UTF-8 (with or without BOM) or
// UTF-16 with a BOM, and comma or tab separated. Every timestamp must parse,
// even on rows that are later skipped; any failure rejects the whole log.
// An empty input yields no events and no error.
func Read(ctx context.Context, r io.Reader) ([]model.Event, Stats, error) {
	var stats Stats

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	head, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if strings.TrimSpace(head) == "" {
		return nil, stats, nil
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(head), br))
	cr.Comma = detectDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, stats, err
	}

	var events []model.Event
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if isBlank(record) {
			continue
		}
		stats.Rows++
		if stats.Rows%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		rawTS := strings.TrimSpace(cell(record, cols.timestamp))
		ts, err := time.Parse(TimestampLayout, rawTS)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, stats, fmt.Errorf("%w: line %d: %q", ErrBadTimestamp, line, rawTS)
		}

		name := cell(record, cols.name)
		action := model.Action(strings.TrimSpace(cell(record, cols.action)))
		if strings.TrimSpace(name) == "" || !action.Valid() {
			stats.Skipped++
			continue
		}

		events = append(events, model.Event{Person: name, Action: action, Timestamp: ts})
		stats.Accepted++
	}
	return events, stats, nil
}

type columns struct {
	name, action, timestamp int
}

func locateColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	cols := columns{
		name:      lookup(ColumnName),
		action:    lookup(ColumnAction),
		timestamp: lookup(ColumnTimestamp),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// detectDelimiter picks tab for tab-separated exports and comma otherwise.
func detectDelimiter(header string) rune {
	if strings.ContainsRune(header, '\t') && !strings.ContainsRune(header, ',') {
		return '\t'
	}
	return ','
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
