// Package reminder periodically notifies patients about appointments that
// start within the next day.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-scheduler/internal/alert"
	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/engine"
	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type Store interface {
	ListActiveBetween(ctx context.Context, from, to caltime.Date) ([]*model.Appointment, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

type Sweeper struct {
	store    Store
	exec     dispatch.Executor
	interval time.Duration
	log      *zap.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewSweeper(s Store, exec dispatch.Executor, interval time.Duration, log *zap.Logger, mc *metrics.Collector) *Sweeper {
	return &Sweeper{store: s, exec: exec, interval: interval, log: log, metrics: mc, now: time.Now}
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("reminder sweeper started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.Sweep(ctx); err != nil {
			s.log.Error("reminder sweep failed", zap.Error(err))
		} else if n > 0 {
			s.log.Info("reminders sent", zap.Int("count", n))
		}

		select {
		case <-ctx.Done():
			s.log.Info("reminder sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep sends one reminder per appointment classified info or warning. The
// reminder is marked before it is dispatched, so a concurrent sweep loses
// the mark and skips it.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	today := caltime.DateOf(now)
	appts, err := s.store.ListActiveBetween(ctx, today, today.AddDays(1))
	if err != nil {
		return 0, fmt.Errorf("list upcoming: %w", err)
	}

	sent := 0
	for _, u := range alert.ListUpcoming(now, appts) {
		a, c := u.Appointment, u.Classification
		if a.ReminderSentAt != nil {
			continue
		}
		if c.Level != alert.LevelInfo && c.Level != alert.LevelWarning {
			continue
		}

		err := s.store.MarkReminderSent(ctx, a.ID, now.UTC())
		if errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return sent, fmt.Errorf("mark reminder %s: %w", a.ID, err)
		}

		if _, err := s.exec.Execute(ctx, instructions(a, c, now.UTC())); err != nil {
			s.log.Warn("reminder dispatch failed",
				zap.String("appointment_id", a.ID),
				zap.Error(err))
			continue
		}
		sent++
		if s.metrics != nil {
			s.metrics.RemindersSent.Inc()
		}
	}
	return sent, nil
}

func instructions(a *model.Appointment, c alert.Classification, now time.Time) []dispatch.Instruction {
	return []dispatch.Instruction{
		dispatch.CreateNotification(&model.Notification{
			ID:            uuid.NewString(),
			RecipientID:   a.PatientID,
			RecipientKind: model.RecipientPatient,
			Title:         "Recordatorio de cita",
			Message:       fmt.Sprintf("%s (%s a las %s)", c.Message, a.Date, a.Time.HHMM()),
			Type:          c.Level.Severity(),
			AppointmentID: a.ID,
			CreatedAt:     now,
		}),
		dispatch.SendEmail(mail.TemplateReminder, engine.EmailVars(a)),
	}
}
