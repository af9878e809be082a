package pdf

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Checker interface {
	Check(ctx context.Context) error
}

// CheckEngineHealth launches and closes one instance and records the result.
func CheckEngineHealth(ctx context.Context, checker Checker, status *atomic.Bool, logger *zap.Logger) bool {
	logger.Debug("checking pdf engine health")
	err := checker.Check(ctx)
	healthy := err == nil
	if !healthy {
		logger.Warn("pdf engine health check failed", zap.Error(err))
	}
	if status.Swap(healthy) != healthy {
		logger.Info("pdf engine health changed", zap.Bool("healthy", healthy))
	}
	return healthy
}

// WatchEngineHealth checks once immediately and then every interval until ctx
// is done.
func WatchEngineHealth(ctx context.Context, checker Checker, status *atomic.Bool, interval time.Duration, logger *zap.Logger) {
	CheckEngineHealth(ctx, checker, status, logger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckEngineHealth(ctx, checker, status, logger)
		}
	}
}
