package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig connection settings for the redis-backed Store.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	Window    int           `yaml:"window"`
	TTL       time.Duration `yaml:"ttl"`
}

// RedisStore keeps per-thread windows in redis lists. Suitable for
// multi-instance deployments where threads span processes.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	window    int
	ttl       time.Duration
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "nanoswarm:"
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	return &RedisStore{
		client:    client,
		keyPrefix: prefix + "thread:",
		window:    window,
		ttl:       cfg.TTL,
	}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, window int, ttl time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisStore{
		client:    client,
		keyPrefix: "nanoswarm:thread:",
		window:    window,
		ttl:       ttl,
	}
}

func (s *RedisStore) threadKey(threadID string) string {
	return s.keyPrefix + threadID
}

func (s *RedisStore) Append(ctx context.Context, threadID, summary string) error {
	if threadID == "" || summary == "" {
		return nil
	}

	key := s.threadKey(threadID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, summary)
	// keep only the newest window entries
	pipe.LTrim(ctx, key, int64(-s.window), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Read(ctx context.Context, threadID string) ([]string, error) {
	entries, err := s.client.LRange(ctx, s.threadKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read thread memory: %w", err)
	}
	return entries, nil
}

// Ping checks store health.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
