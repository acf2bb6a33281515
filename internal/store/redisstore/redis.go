package redisstore

import (
	"context"

	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(addr string, password string, db int, prefix string) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis get %s", key)
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// SetMany writes every entry inside one MULTI/EXEC block.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, s.prefix+key, value, 0)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis snapshot batch")
	}
	return nil
}
