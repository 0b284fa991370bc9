// tokencache/redis.go
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultRedisKey is used when no key is configured for the Redis store.
const defaultRedisKey = "envhub:auth:token"

// RedisStore shares a token entry across a fleet of clients through Redis. The entry is
// stored with a TTL matching its expiry so Redis evicts dead tokens on its own.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed token store. An empty key selects the default.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Save(entry Entry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	ttl := time.Until(entry.Expires)
	if ttl <= 0 {
		return s.Clear()
	}
	return s.client.Set(context.Background(), s.key, encoded, ttl).Err()
}

func (s *RedisStore) Load() (Entry, bool, error) {
	data, err := s.client.Get(context.Background(), s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, nil
	}
	if entry.Token == "" {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (s *RedisStore) Clear() error {
	return s.client.Del(context.Background(), s.key).Err()
}
