package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/weatherwise/weatherwise/internal/config"
	"github.com/weatherwise/weatherwise/internal/pipeline"
)

const refreshJobTag = "refresh-all"

// refreshTimeout bounds one full refresh run across all cities.
const refreshTimeout = 2 * time.Minute

// Refresher is the slice of the pipeline the scheduler drives.
type Refresher interface {
	RefreshAll(ctx context.Context) pipeline.RefreshSummary
}

// Scheduler periodically refreshes all tracked cities at the user-chosen
// interval. Overlapping fires are skipped, never stacked: if a refresh is
// still in flight when the timer fires again, that fire is dropped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	prefs     *config.Preferences

	inFlight atomic.Bool
	done     chan struct{}
}

// New creates a Scheduler driven by the preferences' refresh interval.
func New(refresher Refresher, prefs *config.Preferences) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		prefs:     prefs,
		done:      make(chan struct{}),
	}
}

// Start schedules the repeating refresh job and begins watching for interval
// changes.
func (s *Scheduler) Start() error {
	if err := s.schedule(s.prefs.RefreshMinutes()); err != nil {
		return err
	}
	s.scheduler.StartAsync()

	go s.watchPreferences()
	return nil
}

// Stop stops the scheduler and the preference watcher.
func (s *Scheduler) Stop() {
	close(s.done)
	s.scheduler.Stop()
}

func (s *Scheduler) schedule(minutes int) error {
	_, err := s.scheduler.Every(minutes).Minutes().Tag(refreshJobTag).SingletonMode().Do(s.runRefresh)
	return err
}

// watchPreferences reschedules the job when the refresh interval changes.
func (s *Scheduler) watchPreferences() {
	changes := s.prefs.Subscribe()
	for {
		select {
		case <-s.done:
			return
		case change := <-changes:
			if change != config.ChangeRefreshInterval {
				continue
			}
			minutes := s.prefs.RefreshMinutes()
			if err := s.scheduler.RemoveByTag(refreshJobTag); err != nil {
				log.Printf("scheduler: removing refresh job: %v", err)
			}
			if err := s.schedule(minutes); err != nil {
				log.Printf("scheduler: rescheduling refresh job: %v", err)
				continue
			}
			log.Printf("scheduler: refresh interval set to %d minutes", minutes)
		}
	}
}

// runRefresh runs one refresh pass unless one is already in flight.
func (s *Scheduler) runRefresh() {
	if !s.inFlight.CompareAndSwap(false, true) {
		log.Println("scheduler: refresh still in flight, skipping this fire")
		return
	}
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	summary := s.refresher.RefreshAll(ctx)
	log.Printf("scheduler: refresh run complete, %d succeeded, %d failed", summary.Succeeded, summary.Failed)
}
