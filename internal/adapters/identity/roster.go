package identity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadRoster reads a "name,section,rollno" CSV. A header row is recognised by
// its first cell being "name" (any case) and skipped. Blank lines and rows
// with an empty name are ignored; when a name repeats, the first row wins.
func LoadRoster(ctx context.Context, r io.Reader) ([]Record, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		records []Record
		seen    = make(map[string]struct{})
		first   = true
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRoster, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "name") {
				continue
			}
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if len(row) < 3 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: want name,section,rollno", ErrRoster, line)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		records = append(records, Record{
			Name:    name,
			Section: strings.TrimSpace(row[1]),
			RollNo:  strings.TrimSpace(row[2]),
		})
	}
	return records, nil
}
