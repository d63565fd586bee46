// Package jobs runs the periodic maintenance tasks of a long-lived process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progression"
)

// Func is one run of a job. The context is cancelled when the scheduler
// stops.
type Func func(ctx context.Context) error

// Scheduler runs registered jobs on fixed intervals. A job never overlaps
// with itself.
type Scheduler struct {
	sched  *gocron.Scheduler
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{sched: s, log: log, ctx: ctx, cancel: cancel}
}

// Every registers fn to run every interval, starting when the scheduler
// starts.
func (s *Scheduler) Every(name string, interval time.Duration, fn Func) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	_, err := s.sched.Every(interval).Tag(name).Do(func() {
		start := time.Now()
		if err := fn(s.ctx); err != nil {
			s.log.Warn("job failed", "job", name, "error", err)
			return
		}
		s.log.Debug("job done", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	return nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.sched.StartAsync()
}

// Stop cancels running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.cancel()
	s.sched.Stop()
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return s.sched.Len()
}

// RefreshCatalog reloads the badge catalog snapshot. A failed reload keeps
// the previous snapshot.
func RefreshCatalog(c *progression.Catalog, log *logger.Logger) Func {
	return func(ctx context.Context) error {
		if err := c.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh badge catalog: %w", err)
		}
		log.Info("badge catalog refreshed", "badges", c.Len())
		return nil
	}
}
