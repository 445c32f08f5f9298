package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foodgram/foodgram-backend/config"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

var client *redis.Client

// Init connects to Redis and verifies the connection with a ping
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client, nil when Redis is not configured
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// Ping reports whether Redis is reachable
func Ping(ctx context.Context) error {
	if client == nil {
		return errors.New("redis is not initialized")
	}
	return client.Ping(ctx).Err()
}

// BlacklistToken stores a token hash until the token would have expired anyway
func BlacklistToken(ctx context.Context, tokenHash string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}

	err := client.Set(ctx, blacklistPrefix+tokenHash, "revoked", expiry).Err()
	if err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}

	logger.Debug("Token blacklisted", map[string]interface{}{
		"ttl": expiry.String(),
	})
	return nil
}

// IsTokenBlacklisted checks whether a token hash has been revoked
func IsTokenBlacklisted(ctx context.Context, tokenHash string) (bool, error) {
	n, err := client.Exists(ctx, blacklistPrefix+tokenHash).Result()
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}
	return n > 0, nil
}
