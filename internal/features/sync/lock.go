package sync

import (
	"context"
	"errors"
	"time"

	"supplier-portal/internal/config"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("a sync of this type is already running")

// Locker guards a sync type against concurrent runs.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NewLocker returns the redis lock when SYNC_LOCK_ENABLED is set and a redis
// client exists. Otherwise overlapping runs are allowed.
func NewLocker(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) Locker {
	if !cfg.Sync.LockEnabled || rdb == nil {
		return noopLocker{}
	}
	return &RedisLocker{Client: redislock.New(rdb), TTL: cfg.Sync.LockTTL, Logger: logger}
}

// RedisLocker holds the lock for the life of the run, refreshing it every TTL/2.
type RedisLocker struct {
	Client *redislock.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.Client.Obtain(ctx, "sync:lock:"+key, l.TTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, err
	}
	return hold(lock, key, l.TTL, l.Logger), nil
}

// heldLock is the part of *redislock.Lock a running sync touches.
type heldLock interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// hold keeps lock alive until the returned release func is called.
func hold(lock heldLock, key string, ttl time.Duration, logger *zap.Logger) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		if ttl <= 0 {
			<-stop
			return
		}
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := lock.Refresh(context.Background(), ttl, nil); err != nil {
					logger.Warn("Sync lock lost; run is no longer exclusive",
						zap.String("type", key), zap.Error(err))
					<-stop
					return
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-done
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("Failed to release sync lock", zap.String("type", key), zap.Error(err))
		}
	}
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
