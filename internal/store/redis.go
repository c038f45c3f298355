package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/wordle/apps/session-server/internal/game"
)

const redisKeyPrefix = "session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection.
// Saved sessions expire after ttl of inactivity; zero keeps them forever.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(client, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (that *redisStore) Save(ctx context.Context, id string, st *game.State) error {
	b, err := encode(st)
	if err != nil {
		return err
	}

	if err = that.client.Set(ctx, redisKeyPrefix+id, b, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *redisStore) Load(ctx context.Context, id string) (*game.State, error) {
	b, err := that.client.Get(ctx, redisKeyPrefix+id).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return decode(b)
}

func (that *redisStore) Delete(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (that *redisStore) Close() error { return that.client.Close() }
