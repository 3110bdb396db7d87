package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-api-gateway/internal/ratelimit"
)

// Scheduler periodically sweeps expired rate-limit windows so entries for
// idle clients do not pile up for the life of the process.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *ratelimit.Store
	interval  time.Duration
}

// New creates a new Scheduler sweeping store every interval.
func New(store *ratelimit.Store, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		store:     store,
		interval:  interval,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		if removed := s.store.Sweep(); removed > 0 {
			log.Printf("scheduler: swept %d expired rate-limit windows", removed)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
