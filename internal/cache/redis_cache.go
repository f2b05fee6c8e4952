package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"rawbazaar/backend/internal/store"
)

type RedisBlobStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBlobStore stores snapshots in Redis. A zero ttl keeps them forever.
func NewRedisBlobStore(addr string, password string, db int, ttl time.Duration) *RedisBlobStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisBlobStore{client: client, ttl: ttl}
}

func NewRedisBlobStoreWithClient(client *redis.Client, ttl time.Duration) *RedisBlobStore {
	return &RedisBlobStore{client: client, ttl: ttl}
}

func (c *RedisBlobStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisBlobStore) Close() error {
	return c.client.Close()
}

func (c *RedisBlobStore) LoadBlob(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *RedisBlobStore) SaveBlob(ctx context.Context, key string, blob []byte) error {
	return c.client.Set(ctx, key, blob, c.ttl).Err()
}
