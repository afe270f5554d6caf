// Package cache is the gateway's response cache: a content-addressed,
// time-bounded store mapping query fingerprints to composed payloads.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is the store behind the aggregation engine. Writes are
// last-writer-wins per key; two concurrent identical misses may both compute
// and store, which is harmless.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge removes every key with the given prefix. Used by the listing
	// event consumer to drop stale composite responses early.
	Purge(ctx context.Context, prefix string) error
}
