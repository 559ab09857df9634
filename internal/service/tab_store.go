package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/pos"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTabStore mirrors each cashier's open tabs to redis so a crashed or
// restarted server restores them. Key per cashier, whole state as one JSON
// document: tabs are small and always written together.
type RedisTabStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTabStore(rdb *redis.Client, ttl time.Duration) *RedisTabStore {
	return &RedisTabStore{rdb: rdb, ttl: ttl}
}

var _ pos.TabStore = (*RedisTabStore)(nil)

func tabKey(cashierID uuid.UUID) string {
	return fmt.Sprintf("tabs:%s", cashierID)
}

func (s *RedisTabStore) Save(ctx context.Context, cashierID uuid.UUID, st *pos.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, tabKey(cashierID), payload, s.ttl).Err()
}

func (s *RedisTabStore) Load(ctx context.Context, cashierID uuid.UUID) (*pos.State, error) {
	payload, err := s.rdb.Get(ctx, tabKey(cashierID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st pos.State
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("corrupt tab state for cashier %s: %w", cashierID, err)
	}
	return &st, nil
}
