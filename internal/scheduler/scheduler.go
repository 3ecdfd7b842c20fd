package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Ticker runs one simulation step.
type Ticker interface {
	RunTick(ctx context.Context)
}

// Scheduler invokes a Ticker at a fixed interval. Runs never overlap: a
// tick that is still running when the next one is due causes that run to
// be skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ticker    Ticker
	interval  time.Duration
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(interval time.Duration, ticker Ticker, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		ticker:    ticker,
		interval:  interval,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the periodic tick and starts the underlying scheduler. The
// first tick runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: tick interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if s.ctx.Err() != nil {
			return
		}
		s.ticker.RunTick(s.ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and cancels any future ticks.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
		s.log.Info("scheduler stopped")
	}
}
