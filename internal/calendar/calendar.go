// Package calendar builds the day, week and month views of a doctor's
// appointments. It only reads from its sources.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

var ErrBadGranularity = errors.New("granularity must be day, week or month")

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Day, Week, Month:
		return g, nil
	case "":
		return Month, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadGranularity, s)
}

// Placeholder name shown when an appointment references a missing patient.
const (
	PlaceholderFirstName = "Paciente"
	PlaceholderLastName  = "No encontrado"
)

type Source interface {
	ListAppointments(ctx context.Context, doctorID string) ([]*model.Appointment, error)
	ListPatients(ctx context.Context, doctorID string) ([]*model.Patient, error)
}

// PatientInfo is the slice of patient data the calendar displays.
type PatientInfo struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Missing   bool
}

type Entry struct {
	Appointment *model.Appointment
	Patient     PatientInfo
}

type DayCell struct {
	Date     caltime.Date
	Entries  []Entry
	InPeriod bool
	IsToday  bool
}

type View struct {
	Granularity Granularity
	Reference   caltime.Date
	From, To    caltime.Date
	Days        []DayCell
}

type Aggregator struct {
	src Source
	log *zap.Logger
	now func() time.Time
}

func New(src Source, log *zap.Logger) *Aggregator {
	return &Aggregator{src: src, log: log, now: time.Now}
}

// WithClock replaces the clock used to flag today.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Window returns the first and last visible day for ref at granularity g.
// Month windows span whole Monday-start weeks.
func Window(ref caltime.Date, g Granularity) (from, to caltime.Date) {
	switch g {
	case Day:
		return ref, ref
	case Week:
		from = ref.StartOfWeek()
		return from, from.AddDays(6)
	default:
		from = ref.FirstOfMonth().StartOfWeek()
		return from, ref.LastOfMonth().StartOfWeek().AddDays(6)
	}
}

// Load fetches every appointment of doctorID and buckets the ones inside the
// visible window by date, each day sorted by time. A failing patient lookup
// falls back to placeholders.
func (a *Aggregator) Load(ctx context.Context, doctorID string, ref caltime.Date, g Granularity) (*View, error) {
	appts, err := a.src.ListAppointments(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	patients := map[string]*model.Patient{}
	ps, err := a.src.ListPatients(ctx, doctorID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		a.log.Warn("calendar patient lookup failed, using placeholders",
			zap.String("doctor_id", doctorID), zap.Error(err))
	}
	for _, p := range ps {
		patients[p.ID] = p
	}

	return Build(appts, patients, ref, g, caltime.DateOf(a.now())), nil
}

// Build is the pure part of Load.
func Build(appts []*model.Appointment, patients map[string]*model.Patient, ref caltime.Date, g Granularity, today caltime.Date) *View {
	from, to := Window(ref, g)
	v := &View{Granularity: g, Reference: ref, From: from, To: to}

	buckets := make(map[string][]Entry)
	for _, ap := range appts {
		if ap.Date.Before(from) || ap.Date.After(to) {
			continue
		}
		key := ap.Date.String()
		buckets[key] = append(buckets[key], Entry{Appointment: ap, Patient: patientInfo(ap.PatientID, patients)})
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		entries := buckets[d.String()]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Appointment.Time.Compare(entries[j].Appointment.Time) < 0
		})
		v.Days = append(v.Days, DayCell{
			Date:     d,
			Entries:  entries,
			InPeriod: g != Month || d.Month() == ref.Month(),
			IsToday:  d.Equal(today),
		})
	}
	return v
}

func patientInfo(id string, patients map[string]*model.Patient) PatientInfo {
	p, ok := patients[id]
	if !ok {
		return PatientInfo{ID: id, FirstName: PlaceholderFirstName, LastName: PlaceholderLastName, Missing: true}
	}
	return PatientInfo{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Phone: p.Phone, Email: p.Email}
}

// Count returns the number of appointments in the view.
func (v *View) Count() int {
	n := 0
	for _, d := range v.Days {
		n += len(d.Entries)
	}
	return n
}
