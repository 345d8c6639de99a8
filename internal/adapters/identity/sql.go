package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // pure Go sqlite driver

	"github.com/okian/attendance/internal/domain/model"
)

const schema = `CREATE TABLE IF NOT EXISTS record (
	name    TEXT PRIMARY KEY,
	section TEXT NOT NULL DEFAULT '',
	rollno  TEXT NOT NULL DEFAULT ''
)`

const upsert = `INSERT INTO record (name, section, rollno) VALUES (%s, %s, %s)
ON CONFLICT (name) DO UPDATE SET section = excluded.section, rollno = excluded.rollno`

// lookupChunk bounds the number of bind parameters per query.
const lookupChunk = 500

// dialect captures the differences between the SQL backends.
type dialect struct {
	name string
	// placeholder returns the bind marker for the 1-based argument n.
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{name: "sqlite", placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

// SQLStore is a Store over database/sql. The same table layout serves sqlite and postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) a sqlite roster database at path.
// WAL and busy_timeout pragmas apply to every pooled connection.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, (5 * time.Second).Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("identity: sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	return newSQLStore(ctx, db, sqliteDialect)
}

// OpenPostgres connects to a postgres roster database through pgx.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("identity: postgres: open: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("identity: %s: ping: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("identity: %s: create schema: %w", d.name, err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// Lookup implements Lookup.
func (s *SQLStore) Lookup(ctx context.Context, names []string) (map[string]model.Identity, error) {
	out := make(map[string]model.Identity)
	for start := 0; start < len(names); start += lookupChunk {
		end := min(start+lookupChunk, len(names))
		if err := s.lookupBatch(ctx, names[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) lookupBatch(ctx context.Context, names []string, out map[string]model.Identity) error {
	query, args := s.selectQuery(names)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("identity: %s: lookup: %w", s.dialect.name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var id model.Identity
		if err := rows.Scan(&name, &id.Section, &id.RollNo); err != nil {
			return fmt.Errorf("identity: %s: scan: %w", s.dialect.name, err)
		}
		out[name] = id
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("identity: %s: lookup: %w", s.dialect.name, err)
	}
	return nil
}

func (s *SQLStore) selectQuery(names []string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT name, section, rollno FROM record WHERE name IN (")
	args := make([]any, len(names))
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.dialect.placeholder(i + 1))
		args[i] = name
	}
	b.WriteString(")")
	return b.String(), args
}

// Put implements Store. All records are written in one transaction.
func (s *SQLStore) Put(ctx context.Context, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("identity: %s: begin: %w", s.dialect.name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	p := s.dialect.placeholder
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(upsert, p(1), p(2), p(3)))
	if err != nil {
		return fmt.Errorf("identity: %s: prepare: %w", s.dialect.name, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err = stmt.ExecContext(ctx, r.Name, r.Section, r.RollNo); err != nil {
			return fmt.Errorf("identity: %s: put %q: %w", s.dialect.name, r.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("identity: %s: commit: %w", s.dialect.name, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
