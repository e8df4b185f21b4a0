package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-now/internal/users"
	"github.com/i474232898/weather-now/internal/weather"
)

// Scheduler periodically prunes the lookup cache and logs a usage summary.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	registry  *users.Store
	actor     *users.User
	interval  time.Duration
}

// New creates a new Scheduler. actor must be an admin; its rights are used
// to read the usage report.
func New(interval time.Duration, service *weather.Service, registry *users.Store, actor *users.User) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		registry:  registry,
		actor:     actor,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs one maintenance pass.
func (s *Scheduler) RunOnce() {
	pruned := s.service.PruneCache()

	fields := logrus.Fields{"pruned": pruned}
	report, err := s.registry.AllStats(s.actor)
	if err != nil {
		logrus.WithError(err).Warn("scheduler: usage summary unavailable")
	} else {
		fields["users"] = len(report.PerUser)
		fields["requests"] = report.TotalRequestsAllUsers
		if len(report.TopCitiesAllUsers) > 0 {
			fields["topCity"] = report.TopCitiesAllUsers[0].City
		}
	}
	logrus.WithFields(fields).Info("scheduler: maintenance completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
