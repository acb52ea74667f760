// Package cache holds the transient snapshot cache. Entries expire on
// a short TTL; nothing here is durable domain state — it only saves
// re-billing the model when the dashboard refreshes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cryptopulse/cryptopulse/internal/models"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SnapshotCache caches market snapshots in Redis, keyed by locale.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// New connects to Redis and verifies the connection.
func New(cfg Config, log *logrus.Logger) (*SnapshotCache, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		log:    log.WithField("component", "cache"),
	}, nil
}

// NewWithClient wraps an existing client; used in tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		log:    logrus.StandardLogger().WithField("component", "cache"),
	}
}

// Close closes the underlying client.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

func snapshotKey(lang models.Language) string {
	return fmt.Sprintf("snapshot:%s", lang)
}

// GetSnapshot returns the cached snapshot for lang, if present and
// decodable. Cache trouble is reported as a miss.
func (c *SnapshotCache) GetSnapshot(ctx context.Context, lang models.Language) (*models.MarketSnapshot, bool) {
	data, err := c.client.Get(ctx, snapshotKey(lang)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("snapshot read failed")
		}
		return nil, false
	}
	var snap models.MarketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.WithError(err).Warn("snapshot decode failed, dropping entry")
		c.client.Del(ctx, snapshotKey(lang))
		return nil, false
	}
	return &snap, true
}

// SetSnapshot stores the snapshot for lang with the configured TTL.
func (c *SnapshotCache) SetSnapshot(ctx context.Context, lang models.Language, snap *models.MarketSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.log.WithError(err).Warn("snapshot encode failed")
		return
	}
	if err := c.client.Set(ctx, snapshotKey(lang), data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("snapshot write failed")
	}
}
