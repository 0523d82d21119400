package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a small JSON read-through cache on redis. A nil Store (or one
// built with an empty addr) is usable and behaves as a permanent miss, so
// callers never have to branch on whether redis is configured.
type Store struct {
	redisdb *redis.Client
	prefix  string
	ttl     time.Duration
}

func New(cfg Config, prefix string, ttl time.Duration) *Store {
	if cfg.Addr == "" {
		return &Store{prefix: prefix, ttl: ttl}
	}

	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Store{redisdb: redisdb, prefix: prefix, ttl: ttl}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string, dest any) error {
	if s == nil || s.redisdb == nil {
		return ErrCacheMiss
	}

	data, err := s.redisdb.Get(ctx, s.key(key)).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal(data, dest)
}

func (s *Store) Set(ctx context.Context, key string, val any) error {
	if s == nil || s.redisdb == nil {
		return nil
	}

	data, err := json.Marshal(val)

	if err != nil {
		return err
	}

	return s.redisdb.Set(ctx, s.key(key), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if s == nil || s.redisdb == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}

	return s.redisdb.Del(ctx, full...).Err()
}

// Ping checks redis connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.redisdb == nil {
		return nil
	}
	return s.redisdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s == nil || s.redisdb == nil {
		return nil
	}
	return s.redisdb.Close()
}
