package services

import (
	"context"
	"time"

	"cabinet-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultReminderSchedule runs the reminder pass at the top of every hour.
const DefaultReminderSchedule = "0 * * * *"

// ReminderService periodically sends reminders for upcoming appointments.
type ReminderService struct {
	store    *Store
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewReminderService(store *Store, schedule string, logger zerolog.Logger) *ReminderService {
	if schedule == "" {
		schedule = DefaultReminderSchedule
	}
	return &ReminderService{
		store:    store,
		cron:     cron.New(),
		schedule: schedule,
		timeout:  2 * time.Minute,
		logger:   logger.With().Str("component", "reminders").Logger(),
	}
}

func (s *ReminderService) StartScheduler() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.SendDueReminders(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("reminder scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *ReminderService) Stop() {
	<-s.cron.Stop().Done()
}

// SendDueReminders sends one reminder per due appointment on the cabinet's
// configured channel and returns how many were sent. Failures are logged
// and the appointment stays due for the next pass.
func (s *ReminderService) SendDueReminders(ctx context.Context) int {
	due := s.store.DueReminders(s.store.now())
	if len(due) == 0 {
		return 0
	}
	channel := s.store.CabinetConfig().ReminderSettings.Channel

	sent := 0
	for _, a := range due {
		if ctx.Err() != nil {
			break
		}
		ch := channel
		if ch == "" {
			ch = a.ReminderType
		}
		if ch == "" {
			ch = models.ReminderSMS
		}
		if _, err := s.store.SendReminder(ctx, a.ID, ch); err != nil {
			s.logger.Error().Err(err).Str("appointment", a.ID).Msg("failed to send reminder")
			continue
		}
		sent++
	}
	s.logger.Info().Int("due", len(due)).Int("sent", sent).Msg("reminder pass completed")
	return sent
}
