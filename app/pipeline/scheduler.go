package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Scheduler drives the runner on a fixed interval. A failed or
// panicking cycle is contained; the loop resumes on the next tick.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(runner *Runner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		runner:   runner,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runCycle()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runCycle()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Check cycle panicked, resuming on next tick", "panic", r)
		}
	}()

	err := s.runner.Run(s.ctx)
	if errors.Is(err, ErrAlreadyRunning) {
		slog.Debug("Scheduled check skipped, a cycle is already running")
		return
	}
	if err != nil && s.ctx.Err() == nil {
		slog.Error("Scheduled check failed", "error", err)
	}
}
