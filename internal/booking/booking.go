// Package booking creates appointments, either by a doctor for one of their
// patients or by a patient through the public self-service flow.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/config"
	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/engine"
	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

var ErrSlotTaken = errors.New("slot is no longer available")

const (
	MinDuration = 5
	MaxDuration = 480
)

type Source string

const (
	SourceDoctor      Source = "doctor"
	SourceSelfService Source = "self_service"
)

type Store interface {
	GetDoctor(ctx context.Context, id string) (*model.Doctor, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	PatientByEmail(ctx context.Context, doctorID, email string) (*model.Patient, error)
	CreatePatient(ctx context.Context, p *model.Patient) error
	ListAppointments(ctx context.Context, doctorID string) ([]*model.Appointment, error)
}

// Contact identifies a self-service patient. Existing patients are matched
// by email under the doctor.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Request struct {
	Source   Source
	DoctorID string
	// PatientID is required for doctor bookings.
	PatientID string
	// Contact is required for self-service bookings.
	Contact *Contact

	Date         caltime.Date
	Time         caltime.Clock
	DurationMins int
	Title        string
	Description  string
}

type Result struct {
	Appointment *model.Appointment
	Patient     *model.Patient
	Report      dispatch.Report
	// Conflicts lists active appointments overlapping the new one. Only
	// doctor bookings may create overlaps.
	Conflicts []*model.Appointment
}

// Schedule is the working day offered to self-service patients.
type Schedule struct {
	DayStart caltime.Clock
	DayEnd   caltime.Clock
	Slot     time.Duration
	Weekdays map[time.Weekday]bool
}

func ScheduleFrom(cfg config.ScheduleConfig) (Schedule, error) {
	start, err := caltime.ParseClock(cfg.DayStart)
	if err != nil {
		return Schedule{}, fmt.Errorf("day start: %w", err)
	}
	end, err := caltime.ParseClock(cfg.DayEnd)
	if err != nil {
		return Schedule{}, fmt.Errorf("day end: %w", err)
	}
	if end.Compare(start) <= 0 {
		return Schedule{}, fmt.Errorf("day end %s is not after day start %s", end, start)
	}
	days := make(map[time.Weekday]bool, len(cfg.WorkWeekdays))
	for _, d := range cfg.WorkWeekdays {
		days[d] = true
	}
	return Schedule{
		DayStart: start,
		DayEnd:   end,
		Slot:     time.Duration(cfg.SlotMinutes) * time.Minute,
		Weekdays: days,
	}, nil
}

type Service struct {
	store    Store
	exec     dispatch.Executor
	schedule Schedule
	log      *zap.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewService(s Store, exec dispatch.Executor, sched Schedule, log *zap.Logger, mc *metrics.Collector) *Service {
	return &Service{store: s, exec: exec, schedule: sched, log: log, metrics: mc, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Book(ctx context.Context, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	doctor, err := s.store.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, lookupErr("doctor", err)
	}

	existing, err := s.store.ListAppointments(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w: %w", engine.ErrDownstream, err)
	}

	now := s.now()
	a := &model.Appointment{
		ID:           uuid.NewString(),
		DoctorID:     doctor.ID,
		Date:         req.Date,
		Time:         req.Time,
		DurationMins: req.DurationMins,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       model.StatusScheduled,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if a.DurationMins == 0 {
		a.DurationMins = model.DefaultDurationMins
	}

	// refused early here; the insert repeats the check under the store lock
	selfService := req.Source == SourceSelfService
	if selfService && len(overlapping(a, existing)) > 0 {
		return nil, ErrSlotTaken
	}

	patient, err := s.resolvePatient(ctx, req)
	if err != nil {
		return nil, err
	}
	a.PatientID = patient.ID

	vars := engine.EmailVars(a)
	vars["doctor_name"] = doctor.Name
	vars[mail.VarTo] = patient.Email
	vars[mail.VarPatientName] = patient.FullName()

	ins := []dispatch.Instruction{
		dispatch.InsertAppointment(a, selfService),
		dispatch.CreateNotification(&model.Notification{
			ID:            uuid.NewString(),
			RecipientID:   doctor.ID,
			RecipientKind: model.RecipientDoctor,
			Title:         "Nueva cita",
			Message:       fmt.Sprintf("%s agendó %q el %s a las %s.", patient.FullName(), a.Title, a.Date, a.Time.HHMM()),
			Type:          model.NotifyInfo,
			AppointmentID: a.ID,
			CreatedAt:     now.UTC(),
		}),
	}
	if patient.Email != "" {
		ins = append(ins, dispatch.SendEmail(mail.TemplateBooked, vars))
	}

	rep, err := s.exec.Execute(ctx, ins)
	if selfService && errors.Is(err, store.ErrConflict) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w: %w", engine.ErrDownstream, err)
	}
	conflicts := rep.Overlaps()
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(string(req.Source)).Inc()
	}
	if len(conflicts) > 0 {
		s.log.Warn("appointment booked into an occupied slot",
			zap.String("appointment_id", a.ID),
			zap.String("doctor_id", a.DoctorID),
			zap.Int("others", len(conflicts)))
	}
	return &Result{Appointment: a, Patient: patient, Report: rep, Conflicts: conflicts}, nil
}

func (s *Service) validate(req Request) error {
	switch req.Source {
	case SourceDoctor:
		if req.PatientID == "" {
			return engine.Invalid("patient_id", "required")
		}
	case SourceSelfService:
		if req.Contact == nil || strings.TrimSpace(req.Contact.Email) == "" {
			return engine.Invalid("email", "required")
		}
		if strings.TrimSpace(req.Contact.FirstName) == "" {
			return engine.Invalid("first_name", "required")
		}
	default:
		return engine.Invalid("source", fmt.Sprintf("unknown source %q", req.Source))
	}
	if req.DoctorID == "" {
		return engine.Invalid("doctor_id", "required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return engine.Invalid("title", "required")
	}
	if req.Date.IsZero() {
		return engine.Invalid("date", "required")
	}
	if d := req.DurationMins; d != 0 && (d < MinDuration || d > MaxDuration) {
		return engine.Invalid("duration_mins", fmt.Sprintf("must be between %d and %d", MinDuration, MaxDuration))
	}
	if caltime.Combine(req.Date, req.Time).Before(caltime.Naive(s.now())) {
		return engine.Invalid("date", "appointment is in the past")
	}
	if req.Source == SourceSelfService && !s.schedule.offers(req.Date, req.Time) {
		return engine.Invalid("time", "outside working hours")
	}
	return nil
}

func (s *Service) resolvePatient(ctx context.Context, req Request) (*model.Patient, error) {
	if req.Source == SourceDoctor {
		p, err := s.store.GetPatient(ctx, req.PatientID)
		if err != nil {
			return nil, lookupErr("patient", err)
		}
		if p.DoctorID != req.DoctorID {
			return nil, fmt.Errorf("patient: %w", engine.ErrNotFound)
		}
		return p, nil
	}

	c := req.Contact
	email := strings.ToLower(strings.TrimSpace(c.Email))
	p, err := s.store.PatientByEmail(ctx, req.DoctorID, email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find patient: %w: %w", engine.ErrDownstream, err)
	}

	now := s.now().UTC()
	p = &model.Patient{
		ID:        uuid.NewString(),
		DoctorID:  req.DoctorID,
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(c.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w: %w", engine.ErrDownstream, err)
	}
	s.log.Info("self-service patient created",
		zap.String("patient_id", p.ID),
		zap.String("doctor_id", p.DoctorID))
	return p, nil
}

// AvailableSlots lists the free slot starts of doctorID on date. Slots that
// have started or overlap an active appointment are left out.
func (s *Service) AvailableSlots(ctx context.Context, doctorID string, date caltime.Date, now time.Time) ([]caltime.Clock, error) {
	if _, err := s.store.GetDoctor(ctx, doctorID); err != nil {
		return nil, lookupErr("doctor", err)
	}
	existing, err := s.store.ListAppointments(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w: %w", engine.ErrDownstream, err)
	}
	return s.schedule.Free(date, existing, now), nil
}

// Free is the pure part of AvailableSlots.
func (sc Schedule) Free(date caltime.Date, existing []*model.Appointment, now time.Time) []caltime.Clock {
	if !sc.Weekdays[date.Weekday()] || sc.Slot <= 0 {
		return nil
	}
	now = caltime.Naive(now)

	var out []caltime.Clock
	for t := sc.DayStart; t.Add(sc.Slot).Compare(sc.DayEnd) <= 0; t = t.Add(sc.Slot) {
		start := caltime.Combine(date, t)
		if start.Before(now) {
			continue
		}
		candidate := &model.Appointment{Date: date, Time: t, DurationMins: int(sc.Slot / time.Minute)}
		busy := false
		for _, a := range existing {
			if a.Status.Active() && candidate.Overlaps(a) {
				busy = true
				break
			}
		}
		if !busy {
			out = append(out, t)
		}
	}
	return out
}

func (sc Schedule) offers(date caltime.Date, t caltime.Clock) bool {
	if !sc.Weekdays[date.Weekday()] {
		return false
	}
	return t.Compare(sc.DayStart) >= 0 && t.Add(sc.Slot).Compare(sc.DayEnd) <= 0
}

func overlapping(a *model.Appointment, all []*model.Appointment) []*model.Appointment {
	var out []*model.Appointment
	for _, b := range all {
		if b.ID != a.ID && b.DoctorID == a.DoctorID && b.Status.Active() && a.Overlaps(b) {
			out = append(out, b)
		}
	}
	return out
}

func lookupErr(what string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, engine.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", what, engine.ErrDownstream, err)
}
