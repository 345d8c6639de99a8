// Package identity resolves participant names to roster data (section and roll number).
//
// Several backends implement Store; Open picks one from configuration and
// optionally seeds it from a roster CSV. A name without a roster entry is
// simply absent from a Lookup result. Store failures are returned unchanged
// in kind and fail the caller's request.
package identity

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/attendance/internal/config"
	"github.com/okian/attendance/internal/domain/model"
	"github.com/okian/attendance/pkg/logger"
)

// Record is one roster entry.
type Record struct {
	Name    string
	Section string
	RollNo  string
}

// Lookup resolves a batch of names. Names with no record are absent from the result.
type Lookup interface {
	Lookup(ctx context.Context, names []string) (map[string]model.Identity, error)
}

// Store is a Lookup that can also be written to.
type Store interface {
	Lookup
	// Put inserts or replaces records keyed by name.
	Put(ctx context.Context, records []Record) error
	Close() error
}

// Open builds the backend selected by cfg.IdentityDriver and, when
// cfg.IdentityRosterFile is set, loads that roster into it.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("identity")

	var (
		store Store
		err   error
	)
	switch cfg.IdentityDriver {
	case config.DriverMemory:
		store = NewMemoryStore()
	case config.DriverSQLite:
		store, err = OpenSQLite(ctx, cfg.IdentityDSN)
	case config.DriverPostgres:
		store, err = OpenPostgres(ctx, cfg.IdentityDSN)
	case config.DriverRedis:
		store, err = OpenRedis(ctx, cfg.IdentityDSN, cfg.IdentityKeyPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.IdentityDriver)
	}
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "identity store opened", logger.String("driver", cfg.IdentityDriver))

	if cfg.IdentityRosterFile == "" {
		return store, nil
	}
	n, err := seed(ctx, store, cfg.IdentityRosterFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info(ctx, "roster loaded",
		logger.String("file", cfg.IdentityRosterFile),
		logger.Int("records", n))
	return store, nil
}

func seed(ctx context.Context, store Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRoster, err)
	}
	defer func() { _ = f.Close() }()

	records, err := LoadRoster(ctx, f)
	if err != nil {
		return 0, err
	}
	if err := store.Put(ctx, records); err != nil {
		return 0, fmt.Errorf("identity: seed roster: %w", err)
	}
	return len(records), nil
}
