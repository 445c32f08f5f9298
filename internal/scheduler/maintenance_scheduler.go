package scheduler

import (
	"context"
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	tokenPurgeSpec        = "@hourly"
	limiterCleanupSpec    = "@every 10m"
	maintenanceJobTimeout = time.Minute
)

// MaintenanceScheduler runs housekeeping jobs: purging expired revoked
// tokens and forgetting idle rate limiter clients
type MaintenanceScheduler struct {
	cron       *cron.Cron
	tokenStore service.TokenStore
	limiter    *middleware.RateLimiter
	collector  *metrics.Collector
}

// NewMaintenanceScheduler creates the scheduler. limiter and collector may be nil.
func NewMaintenanceScheduler(tokenStore service.TokenStore, limiter *middleware.RateLimiter, collector *metrics.Collector) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:       cron.New(),
		tokenStore: tokenStore,
		limiter:    limiter,
		collector:  collector,
	}
}

func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(tokenPurgeSpec, s.PurgeRevokedTokens); err != nil {
		logger.Error("Failed to add cron job for revoked token purge", err)
		return err
	}

	if s.limiter != nil {
		if _, err := s.cron.AddFunc(limiterCleanupSpec, s.CleanupRateLimiter); err != nil {
			logger.Error("Failed to add cron job for rate limiter cleanup", err)
			return err
		}
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"token_purge":     tokenPurgeSpec,
		"limiter_cleanup": limiterCleanupSpec,
	})
	return nil
}

// PurgeRevokedTokens drops revoked tokens that have expired anyway
func (s *MaintenanceScheduler) PurgeRevokedTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceJobTimeout)
	defer cancel()

	removed, err := s.tokenStore.Purge(ctx)
	if err != nil {
		logger.Error("Scheduled revoked token purge failed", err)
		return
	}
	if s.collector != nil {
		s.collector.RecordRevokedTokensPurged(removed)
	}
	logger.Debug("Scheduled revoked token purge finished", map[string]interface{}{
		"removed": removed,
	})
}

func (s *MaintenanceScheduler) CleanupRateLimiter() {
	remaining := s.limiter.Cleanup()
	logger.Debug("Rate limiter cleanup finished", map[string]interface{}{
		"clients": remaining,
	})
}

// Stop waits for running jobs to finish
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped")
}
