package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"supplier-portal/internal/kv"
)

type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// KVStore keeps sessions as JSON documents in a kv.Store (Redis in production).
type KVStore struct {
	kv  kv.Store
	now func() time.Time
}

func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store, now: time.Now}
}

func (s *KVStore) Save(ctx context.Context, sess *Session) error {
	body, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Duration(0)
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return errors.New("session already expired")
		}
	}
	return s.kv.Set(ctx, sess.ID, body, ttl)
}

func (s *KVStore) Get(ctx context.Context, id string) (*Session, error) {
	body, err := s.kv.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *KVStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, id)
}
