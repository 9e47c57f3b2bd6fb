package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

// PresenceStore is the Redis-backed PresenceStore implementation for
// deployments that already run Redis and want presence flags to survive a
// fanout-server restart.
// TECHNICAL DISCOVERY: Plain keys with EXISTS checks beat a shared set here -
// per-user reads and writes stay O(1) and independent
type PresenceStore struct {
	rdb *redis.Client
}

const keyPrefix = "online:"

// NewPresenceStore connects to Redis and verifies the connection
func NewPresenceStore(redisURL string) (*PresenceStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("Connected to Redis for presence flags")
	return &PresenceStore{rdb: rdb}, nil
}

func (s *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	return s.rdb.Set(ctx, keyPrefix+userID, "1", 0).Err()
}

func (s *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, keyPrefix+userID).Err()
}

func (s *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the Redis connection
func (s *PresenceStore) Close() error {
	return s.rdb.Close()
}
