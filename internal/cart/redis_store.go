package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/cartengine/pkg/redis"
)

type snapshotKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Touch(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CartSnapshotKey(cartID string) string
}

// RedisStore keeps snapshots as JSON values with a sliding TTL.
type RedisStore struct {
	kv  snapshotKV
	ttl time.Duration
}

func NewRedisStore(kv snapshotKV, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context, cartID string) (*Snapshot, error) {
	key := r.kv.CartSnapshotKey(cartID)
	raw, err := r.kv.Get(ctx, key)
	if redis.IsMiss(err) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart snapshot: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if _, err := r.kv.Touch(ctx, key, r.ttl); err != nil {
		return nil, fmt.Errorf("refresh cart snapshot ttl: %w", err)
	}
	return &snapshot, nil
}

func (r *RedisStore) Save(ctx context.Context, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := r.kv.Set(ctx, r.kv.CartSnapshotKey(snapshot.CartID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("set cart snapshot: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, cartID string) error {
	return r.kv.Del(ctx, r.kv.CartSnapshotKey(cartID))
}
