package cache

import (
	"context"
	"fmt"

	"text2phenotype.com/itn/redis"
)

// LocksDB is the Redis database holding build locks.
const LocksDB redis.DB = 3

// Locker serialises grammar builds between processes sharing a cache
// directory.
type Locker interface {
	Lock(ctx context.Context, key string) (redis.ReleaseLock, error)
	Close() error
}

type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (redis.ReleaseLock, error) {
	return func() error { return nil }, nil
}

func (NopLocker) Close() error { return nil }

// LockerFromEnv returns a Redis backed Locker when ITN_REDIS_HOST is set and
// a NopLocker otherwise.
func LockerFromEnv() (Locker, error) {
	cfg, err := redis.ReadEnvironment()
	if err != nil {
		return nil, err
	}
	if !cfg.Configured() {
		return NopLocker{}, nil
	}
	return redis.NewClientFromConfig(cfg, LocksDB), nil
}

var _ Locker = (*redis.Client)(nil)

// LockKey names the build lock of one cache artifact.
func LockKey(path string, fingerprint uint64) string {
	return fmt.Sprintf("itn:build:%s:%016x", path, fingerprint)
}
