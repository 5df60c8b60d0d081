package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stationuptime/internal/models"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// NewClient returns a configured go-redis client and validates the
// connection with PING.
func NewClient(addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redisstore: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// Store caches the latest computed percent per station.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed cache.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(stationID uint32) string {
	return fmt.Sprintf("uptime:station:%d", stationID)
}

// SaveRun caches every station's percent from a completed run.
func (s *Store) SaveRun(ctx context.Context, results []models.StationUptime) error {
	pipe := s.client.Pipeline()
	for _, result := range results {
		pipe.Set(ctx, s.key(result.StationID), result.Percent, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Percent returns the cached percent for a station. redis.Nil on miss.
func (s *Store) Percent(ctx context.Context, stationID uint32) (int, error) {
	raw, err := s.client.Get(ctx, s.key(stationID)).Result()
	if err != nil {
		return 0, err
	}
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("redisstore: corrupt percent for station %d: %w", stationID, err)
	}
	return percent, nil
}
