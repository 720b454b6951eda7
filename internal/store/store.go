package store

import (
	"context"
	"fmt"
)

// Store is a key-value medium holding serialized application state.
type Store interface {
	// Load returns the value saved under key, or nil if there is none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the value under key.
	Save(ctx context.Context, key string, value []byte) error

	// Lifecycle
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Open connects the named backend. dsn is a file path for sqlite and a
// redis:// URL for redis; memory ignores it.
func Open(backend, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case BackendSQLite, "":
		s, err = NewSQLiteStore(dsn)
	case BackendRedis:
		s, err = NewRedisStore(RedisOptions{URL: dsn})
	case BackendMemory:
		s = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
