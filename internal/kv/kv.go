// Package kv is the small expiring key/value layer behind sessions and one-time codes.
package kv

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
