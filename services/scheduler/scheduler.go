// Package schedsvc runs the periodic background jobs of the API.
package schedsvc

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
)

// Reminder sends review reminders, at most one per learner per cooldown, returning the number of emails sent.
type Reminder interface {
	SendReviewReminders(ctx context.Context, cooldown time.Duration) (int, error)
}

// Scheduler manages the scheduled jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	conf      core.ReminderConfig
	reminder  Reminder
	logger    core.Logger
	timeout   time.Duration
}

func New(conf *core.Config, reminder Reminder, logger core.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		conf:      conf.Reminder,
		reminder:  reminder,
		logger:    logger,
		timeout:   5 * time.Minute,
	}
}

// Start schedules the enabled jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if s.conf.Enabled {
		// first run after one interval
		_, err := s.scheduler.Every(s.conf.Interval).WaitForSchedule().Do(s.RunReminders)
		if err != nil {
			return errors.Wrap(err, "scheduling review reminders")
		}
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return s.scheduler.Len()
}

// RunReminders sends the review reminders once.
func (s *Scheduler) RunReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	sent, err := s.reminder.SendReviewReminders(ctx, s.conf.Cooldown)
	if err != nil {
		s.logger.Error("sending review reminders", errors.Wrap(err, "schedsvc.RunReminders"))
		return
	}
	s.logger.Info("review reminders sent", map[string]interface{}{"count": sent})
}
