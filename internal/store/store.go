// Package store provides the durable key-value stores that back visitor
// preferences: in-memory, SQLite and Redis.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("store: key not found")

// UpdateFunc computes the new value of a key from its current one. found is
// false when the key has never been set.
type UpdateFunc func(current string, found bool) (string, error)

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Update applies fn to the current value and stores the result as one
	// atomic step: concurrent updates of the same key never see the same
	// current value. It returns the stored value.
	Update(ctx context.Context, key string, fn UpdateFunc) (string, error)
	Close() error
}

// Driver names a Store implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Options selects and configures a Store.
type Options struct {
	Driver     Driver
	SQLitePath string
	RedisAddr  string
	RedisDB    int
}

// Open returns the Store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverRedis:
		s, err := OpenRedis(ctx, opts.RedisAddr, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// Key joins a scope and a name into a store key. An empty scope yields name.
func Key(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + ":" + name
}
