package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/teamauth/pkg/auth"
)

var _ auth.StateStorage = (*StateStore)(nil)

// StateStore keeps one-time OAuth states in Redis so any instance can finish
// a handshake another one began. Expiry is left to Redis key TTLs.
type StateStore struct {
	db     redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStateStore wraps client. Keys are written as prefix + "oauth_state:" + state.
func NewStateStore(client redis.UniversalClient, prefix string) *StateStore {
	return &StateStore{
		db:     client,
		prefix: prefix + "oauth_state:",
		now:    time.Now,
	}
}

func (s *StateStore) StoreState(ctx context.Context, state string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrStateExpired
	}
	if err := s.db.Set(ctx, s.prefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	return nil
}

// ConsumeState uses GETDEL, so two callbacks racing on one state cannot both win.
func (s *StateStore) ConsumeState(ctx context.Context, state string) error {
	err := s.db.GetDel(ctx, s.prefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return auth.ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("consume oauth state: %w", err)
	}
	return nil
}
