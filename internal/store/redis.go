package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/openweathermap-client/internal/retrieval"
)

const keyPrefix = "owm:retrievals"

// RedisStore keeps records as JSON in capped Redis lists: one list for all
// records and one per endpoint.
type RedisStore struct {
	client     *redis.Client
	maxHistory int64
	maxAge     time.Duration
}

// ConnectRedis parses url and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	log.Printf("INFO: redis connected at %s", opt.Addr)
	return client, nil
}

// NewRedisStore wraps client. maxHistory <= 0 keeps 1000 records per list;
// maxAge > 0 expires lists that have not been written for that long.
func NewRedisStore(client *redis.Client, maxHistory int, maxAge time.Duration) *RedisStore {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	return &RedisStore{client: client, maxHistory: int64(maxHistory), maxAge: maxAge}
}

func allKey() string                 { return keyPrefix + ":all" }
func endpointKey(name string) string { return keyPrefix + ":" + name }

func (s *RedisStore) Save(ctx context.Context, rec retrieval.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, key := range []string{allKey(), endpointKey(rec.Endpoint)} {
			p.LPush(ctx, key, data)
			p.LTrim(ctx, key, 0, s.maxHistory-1)
			if s.maxAge > 0 {
				p.Expire(ctx, key, s.maxAge)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, limit int) ([]retrieval.Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	return s.load(ctx, allKey(), 0, stop)
}

func (s *RedisStore) Latest(ctx context.Context, endpoint string) (retrieval.Record, error) {
	recs, err := s.load(ctx, endpointKey(endpoint), 0, 0)
	if err != nil {
		return retrieval.Record{}, err
	}
	return recs[0], nil
}

// Range returns matches oldest first, like MemoryStore.
func (s *RedisStore) Range(ctx context.Context, endpoint string, from, to time.Time) ([]retrieval.Record, error) {
	recs, err := s.load(ctx, endpointKey(endpoint), 0, -1)
	if err != nil {
		return nil, err
	}

	var result []retrieval.Record
	for i := len(recs) - 1; i >= 0; i-- {
		if inRange(recs[i].StartedAt, from, to) {
			result = append(result, recs[i])
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

func (s *RedisStore) load(ctx context.Context, key string, start, stop int64) ([]retrieval.Record, error) {
	raw, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	recs := make([]retrieval.Record, 0, len(raw))
	for _, item := range raw {
		var rec retrieval.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			log.Printf("ERROR: skipping undecodable record in %s: %v", key, err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
