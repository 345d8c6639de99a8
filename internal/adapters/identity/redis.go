package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/attendance/internal/domain/model"
)

// Hash fields of a roster record.
const (
	fieldSection = "section"
	fieldRollNo  = "rollno"
)

// RedisStore keeps one hash per name under "<prefix>:<name>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to dsn, either a redis:// URL or a bare host:port.
func OpenRedis(ctx context.Context, dsn, prefix string) (*RedisStore, error) {
	opts := &redis.Options{Addr: dsn}
	if strings.Contains(dsn, "://") {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("identity: redis: %w", err)
		}
		opts = parsed
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("identity: redis: connect: %w", err)
	}
	return NewRedisStore(client, prefix), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: strings.TrimSuffix(prefix, ":")}
}

func (s *RedisStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

// Lookup implements Lookup with one pipelined round trip.
func (s *RedisStore) Lookup(ctx context.Context, names []string) (map[string]model.Identity, error) {
	out := make(map[string]model.Identity)
	if len(names) == 0 {
		return out, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(names))
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, name := range names {
			cmds[i] = p.HGetAll(ctx, s.key(name))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("identity: redis: lookup: %w", err)
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		out[names[i]] = model.Identity{Section: fields[fieldSection], RollNo: fields[fieldRollNo]}
	}
	return out, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, r := range records {
			p.HSet(ctx, s.key(r.Name), fieldSection, r.Section, fieldRollNo, r.RollNo)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("identity: redis: put: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
