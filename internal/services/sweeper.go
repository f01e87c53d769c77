package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	Purge() int
}

type Sweeper interface {
	Start(ctx context.Context)
	Stop()
}

type sweeper struct {
	target   Purger
	interval time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewSweeper(target Purger, interval time.Duration, log *zap.Logger) Sweeper {
	return &sweeper{
		target:   target,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start implements Sweeper.
func (s *sweeper) Start(ctx context.Context) {
	s.log.Info("starting result sweeper", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop implements Sweeper.
func (s *sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("stopping result sweeper")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.target.Purge(); removed > 0 {
				s.log.Debug("purged expired results", zap.Int("removed", removed))
			}
		}
	}
}
