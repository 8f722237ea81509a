// Package retention deletes day records older than a horizon.
package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/store"
)

type Sweeper struct {
	store     store.Store
	loc       *time.Location
	clock     clock.Clock
	newTicker clock.TickerFactory
	logger    *zap.Logger
}

func NewSweeper(st store.Store, loc *time.Location, clk clock.Clock, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:     st,
		loc:       loc,
		clock:     clk,
		newTicker: clock.NewTicker,
		logger:    logger,
	}
}

// WithTicker replaces the ticker used by Run.
func (s *Sweeper) WithTicker(f clock.TickerFactory) *Sweeper {
	s.newTicker = f
	return s
}

// Cutoff returns the oldest date that survives a sweep keeping daysToKeep days.
func (s *Sweeper) Cutoff(daysToKeep int) string {
	return models.FormatDate(s.clock.Now().In(s.loc).AddDate(0, 0, -daysToKeep), s.loc)
}

// Sweep deletes records older than today minus daysToKeep and returns how
// many were removed. Failures are logged and reported as zero.
func (s *Sweeper) Sweep(ctx context.Context, daysToKeep int) int {
	if daysToKeep < 1 {
		s.logger.Error("refusing retention sweep", zap.Int("days_to_keep", daysToKeep))
		return 0
	}

	cutoff := s.Cutoff(daysToKeep)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention sweep failed",
			zap.String("cutoff", cutoff),
			zap.Int("deleted_before_failure", n),
			zap.Error(err))
		return 0
	}

	if n > 0 {
		s.logger.Info("removed old day records", zap.Int("count", n), zap.String("cutoff", cutoff))
	}
	return n
}

// Run sweeps immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration, daysToKeep int) {
	s.Sweep(ctx, daysToKeep)
	if interval <= 0 {
		return
	}

	ticker := s.newTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.Sweep(ctx, daysToKeep)
		}
	}
}
