package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/giftwish/giftwish-backend/config"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance, nil when Redis is disabled
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// CachePreview stores a serialized link preview under the page URL
func CachePreview(ctx context.Context, url string, payload []byte, ttl time.Duration) error {
	key := fmt.Sprintf("preview:%s", url)
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Error("Failed to cache link preview", err, map[string]interface{}{
			"url": url,
		})
		return err
	}
	return nil
}

// GetCachedPreview returns the cached preview payload, or nil on a miss
func GetCachedPreview(ctx context.Context, url string) ([]byte, error) {
	key := fmt.Sprintf("preview:%s", url)
	val, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cached link preview", err, map[string]interface{}{
			"url": url,
		})
		return nil, err
	}
	return val, nil
}
