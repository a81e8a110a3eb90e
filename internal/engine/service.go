package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type AppointmentReader interface {
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, doctorID string) ([]*model.Appointment, error)
}

type Service struct {
	store   AppointmentReader
	exec    dispatch.Executor
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

func NewService(r AppointmentReader, exec dispatch.Executor, log *zap.Logger, mc *metrics.Collector) *Service {
	return &Service{store: r, exec: exec, log: log, metrics: mc, now: time.Now}
}

// WithClock replaces the time source used for updated-at stamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type Result struct {
	Appointment  *model.Appointment
	Instructions []dispatch.Instruction
	Report       dispatch.Report
	// Conflicts lists other active appointments in the slot the update moved
	// the appointment into.
	Conflicts []*model.Appointment
}

// ApplyTransition applies ch to appointment id without an ownership check.
func (s *Service) ApplyTransition(ctx context.Context, id string, ch Changes) (*Result, error) {
	return s.ApplyTransitionFor(ctx, "", id, ch)
}

// ApplyTransitionFor is ApplyTransition restricted to appointments owned by
// doctorID. Appointments of other doctors report ErrNotFound. An empty
// doctorID skips the check.
func (s *Service) ApplyTransitionFor(ctx context.Context, doctorID, id string, ch Changes) (*Result, error) {
	if ch.Empty() {
		return nil, ErrNothingToUpdate
	}

	cur, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, s.storeErr("load appointment", err)
	}
	if doctorID != "" && cur.DoctorID != doctorID {
		return nil, ErrNotFound
	}

	next, ins, err := Plan(cur, ch, s.now().UTC())
	if err != nil {
		s.count(cur.Status, ch, "rejected")
		return nil, err
	}

	rep, err := s.exec.Execute(ctx, ins)
	if err != nil {
		s.count(cur.Status, ch, "failed")
		return nil, s.storeErr("apply transition", err)
	}
	s.count(cur.Status, ch, "applied")

	// read after the write so a booking that committed first is reported
	var conflicts []*model.Appointment
	if !next.SameSlot(cur) && next.Status.Active() {
		conflicts, err = s.slotConflicts(ctx, next)
		if err != nil {
			s.log.Error("slot conflict lookup failed after reschedule",
				zap.String("appointment_id", next.ID),
				zap.Error(err))
		}
	}
	if len(conflicts) > 0 {
		s.log.Warn("appointment moved into an occupied slot",
			zap.String("appointment_id", next.ID),
			zap.String("date", next.Date.String()),
			zap.String("time", next.Time.HHMM()),
			zap.Int("others", len(conflicts)))
	}

	return &Result{Appointment: next, Instructions: ins, Report: rep, Conflicts: conflicts}, nil
}

func (s *Service) slotConflicts(ctx context.Context, a *model.Appointment) ([]*model.Appointment, error) {
	all, err := s.store.ListAppointments(ctx, a.DoctorID)
	if err != nil {
		return nil, s.storeErr("list appointments", err)
	}
	return SlotConflicts(a, all), nil
}

// SlotConflicts returns the active appointments in all, other than a, that
// start in a's slot.
func SlotConflicts(a *model.Appointment, all []*model.Appointment) []*model.Appointment {
	var out []*model.Appointment
	for _, b := range all {
		if b.ID != a.ID && b.Status.Active() && a.SameSlot(b) {
			out = append(out, b)
		}
	}
	return out
}

func (s *Service) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return downstream(op, err)
	}
}

func (s *Service) count(from model.Status, ch Changes, result string) {
	if s.metrics == nil {
		return
	}
	to := from
	if ch.Status != nil && ch.Status.Valid() {
		to = *ch.Status
	}
	s.metrics.TransitionsTotal.WithLabelValues(string(from), string(to), result).Inc()
}
