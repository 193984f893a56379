package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/careerdeck/gatekeeper/internal/models"
	"github.com/careerdeck/gatekeeper/internal/repositories"
)

// CleanupManager periodically removes stale challenges and login
// attempts past their retention window.
type CleanupManager struct {
	challenges *repositories.ChallengeRepository
	attempts   *repositories.LoginAttemptRepository
	clock      models.Clock
	retention  time.Duration
	interval   time.Duration
	logger     *slog.Logger
	stopCh     chan struct{}
}

// NewCleanupManager creates a new cleanup manager. retention bounds
// how long audit rows are kept.
func NewCleanupManager(
	challenges *repositories.ChallengeRepository,
	attempts *repositories.LoginAttemptRepository,
	clock models.Clock,
	retention time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *CleanupManager {
	return &CleanupManager{
		challenges: challenges,
		attempts:   attempts,
		clock:      clock,
		retention:  retention,
		interval:   interval,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := cm.clock.Now()

	expired, err := cm.challenges.DeleteExpiredBefore(cleanupCtx, now)
	if err != nil {
		cm.logger.Error("failed to sweep expired challenges", slog.Any("error", err))
	} else if expired > 0 {
		cm.logger.Info("expired challenges removed", slog.Int64("rows_deleted", expired))
	}

	purged, err := cm.attempts.DeleteOlderThan(cleanupCtx, now.Add(-cm.retention))
	if err != nil {
		cm.logger.Error("failed to purge old login attempts", slog.Any("error", err))
	} else if purged > 0 {
		cm.logger.Info("old login attempts purged", slog.Int64("rows_deleted", purged))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
