package service

import (
	"context"
	"fmt"
	"time"

	"befit/fitness-app/internal/logger"

	"github.com/robfig/cron"
)

const sweepTimeout = 30 * time.Second

// Sweeper periodically closes workout sessions that were opened and never
// completed, such as sessions cancelled on the client.
type Sweeper struct {
	cron     *cron.Cron
	sessions SessionService
}

// NewSweeper schedules the sweep. schedule uses cron syntax, e.g. "@every 30m".
func NewSweeper(sessions SessionService, schedule string) (*Sweeper, error) {
	s := &Sweeper{cron: cron.New(), sessions: sessions}
	if err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	logger.Info("abandoned-session sweeper started")
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep runs one pass.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sessions.AbandonStale(ctx)
	if err != nil {
		logger.Error("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("marked sessions abandoned", "count", n)
	}
}
