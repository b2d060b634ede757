package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisSlot stores each slot as a plain Redis string at <prefix><key> with no
// expiry.
type redisSlot struct {
	client *redis.Client
	prefix string
}

// NewRedisSlot connects to the Redis server at addr and verifies it answers
// PING.
func NewRedisSlot(ctx context.Context, addr, prefix string) (Slot, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("opening redis slot at %s: %w", addr, err)
	}
	return newRedisSlotFromClient(client, prefix), nil
}

func newRedisSlotFromClient(client *redis.Client, prefix string) *redisSlot {
	return &redisSlot{client: client, prefix: prefix}
}

func (s *redisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return data, true, nil
}

func (s *redisSlot) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

func (s *redisSlot) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("removing slot %s: %w", key, err)
	}
	return nil
}

func (s *redisSlot) Close() error {
	return s.client.Close()
}
