package service

import (
	"context"
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/repository"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/foodgram/foodgram-backend/pkg/redis"
)

// TokenStore remembers revoked access tokens until they expire.
// Tokens are identified by util.HashToken.
type TokenStore interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
	// Purge drops entries whose token has expired and returns how many went
	Purge(ctx context.Context) (int64, error)
}

type redisTokenStore struct{}

// NewRedisTokenStore uses the blacklist in pkg/redis. redis.Init must have succeeded.
func NewRedisTokenStore() TokenStore {
	return &redisTokenStore{}
}

func (s *redisTokenStore) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	return redis.BlacklistToken(ctx, tokenHash, time.Until(expiresAt))
}

func (s *redisTokenStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	return redis.IsTokenBlacklisted(ctx, tokenHash)
}

// Purge is a no-op: blacklist keys carry a TTL.
func (s *redisTokenStore) Purge(ctx context.Context) (int64, error) {
	return 0, nil
}

type dbTokenStore struct {
	repo repository.RevokedTokenRepository
	now  func() time.Time
}

func NewDBTokenStore(repo repository.RevokedTokenRepository) TokenStore {
	return &dbTokenStore{repo: repo, now: time.Now}
}

func (s *dbTokenStore) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return nil
	}
	return s.repo.Create(tokenHash, expiresAt)
}

func (s *dbTokenStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	return s.repo.Exists(tokenHash, s.now())
}

func (s *dbTokenStore) Purge(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(s.now())
	if err != nil {
		logger.Error("Failed to purge revoked tokens", err)
		return 0, err
	}
	if removed > 0 {
		logger.Info("Purged expired revoked tokens", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed, nil
}
