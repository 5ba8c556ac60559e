package dedup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// RedisCache is a Cache backed by Redis, shared across engine instances.
type RedisCache struct {
	client *redis.Client
}

// record is the stored value: the triggered events plus metadata.
type record struct {
	Symbol    string                `json:"symbol"`
	Recipient string                `json:"recipient"`
	Key       string                `json:"key"`
	Date      string                `json:"date"`
	Time      string                `json:"time"`
	Triggered []models.TriggerEvent `json:"alertTriggered"`
}

// NewRedisCache connects to Redis at the given URL
// (e.g. redis://localhost:6379/0).
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCacheUnavailable, err.Error())
	}
	return &RedisCache{client: client}, nil
}

// Seen implements Cache.
func (r *RedisCache) Seen(ctx context.Context, symbol, recipient, key string, date time.Time) (bool, error) {
	n, err := r.client.Exists(ctx, Key(symbol, recipient, key, date)).Result()
	if err != nil {
		return false, errors.Wrap(err, "dedup seen")
	}
	return n > 0, nil
}

// Record implements Cache.
func (r *RedisCache) Record(ctx context.Context, symbol, recipient, key string, date time.Time, events []models.TriggerEvent) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now()

	payload, err := json.Marshal(record{
		Symbol:    symbol,
		Recipient: recipient,
		Key:       key,
		Date:      date.Format("2006-01-02"),
		Time:      now.Format("15:04:05"),
		Triggered: events,
	})
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, Key(symbol, recipient, key, date), payload, TTL(now)).Err(); err != nil {
		return errors.Wrap(err, "dedup record")
	}
	return nil
}

// Close implements Cache.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
