package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"authkeeper/internal/auth/ports/repositories"
	"authkeeper/pkg/logger"
)

const (
	msgSweeperStarted = "session sweeper started"
	msgSweeperStopped = "session sweeper stopped"
	msgSweepDone      = "expired sessions removed"
	msgErrSweep       = "failed to sweep expired sessions"

	// DefaultSweepInterval используется, если интервал не задан.
	DefaultSweepInterval = 10 * time.Minute
)

// SessionSweeper периодически удаляет просроченные refresh-сессии.
type SessionSweeper struct {
	sessionRepo repositories.SessionRepository
	interval    time.Duration
	now         func() time.Time
}

// NewSessionSweeper создает фоновую задачу очистки.
func NewSessionSweeper(sessionRepo repositories.SessionRepository, interval time.Duration, now func() time.Time) *SessionSweeper {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeper{
		sessionRepo: sessionRepo,
		interval:    interval,
		now:         now,
	}
}

// SweepOnce выполняет один проход очистки.
func (s *SessionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	removed, err := s.sessionRepo.SweepExpired(ctx, s.now())
	if err != nil {
		logger.Log(ctx).Error(ctx, msgErrSweep, zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		logger.Log(ctx).Info(ctx, msgSweepDone, zap.Int64("removed_count", removed))
	}
	return removed, nil
}

// Run выполняет очистку сразу и затем с заданным интервалом до отмены ctx.
func (s *SessionSweeper) Run(ctx context.Context) {
	log := logger.Log(ctx).With(zap.Duration("interval", s.interval))
	log.Info(ctx, msgSweeperStarted)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		_, _ = s.SweepOnce(ctx)

		select {
		case <-ctx.Done():
			log.Info(ctx, msgSweeperStopped)
			return
		case <-ticker.C:
		}
	}
}
