package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/pkg/jobs"
)

type sessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// NewSessionSweeper schedules periodic removal of expired sessions.
func NewSessionSweeper(auth sessionSweeper, interval time.Duration, logger *zap.Logger) *jobs.Periodic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return jobs.NewPeriodic("session-sweeper", interval, func(ctx context.Context) error {
		removed, err := auth.SweepExpired(ctx)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("expired sessions removed", zap.Int64("count", removed))
		}
		return nil
	}, logger)
}
