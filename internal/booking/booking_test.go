package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/config"
	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/engine"
	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store/memstore"
)

// Monday 2025-09-08, 08:00 on the clinic clock.
var now = time.Date(2025, time.September, 8, 8, 0, 0, 0, time.UTC)

var monday = caltime.NewDate(2025, time.September, 8)

type capturingMailer struct{ templates []string }

func (m *capturingMailer) Send(_ context.Context, template string, _ map[string]string) (mail.Receipt, error) {
	m.templates = append(m.templates, template)
	return mail.Receipt{MessageID: "m1"}, nil
}

type env struct {
	store  *memstore.Store
	mailer *capturingMailer
	svc    *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.CreateDoctor(ctx, &model.Doctor{ID: "d1", Email: "doc@example.com", Name: "Dra. Paz"}))
	require.NoError(t, s.CreatePatient(ctx, &model.Patient{ID: "p1", DoctorID: "d1", FirstName: "Ana", Email: "ana@example.com"}))

	sched, err := ScheduleFrom(config.ScheduleConfig{
		DayStart:     "09:00",
		DayEnd:       "12:00",
		SlotMinutes:  30,
		WorkWeekdays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	})
	require.NoError(t, err)

	m := &capturingMailer{}
	mc := metrics.NewCollector("test", prometheus.NewRegistry())
	d := dispatch.New(s, s, s, m, zap.NewNop(), mc)
	svc := NewService(s, d, sched, zap.NewNop(), mc).WithClock(func() time.Time { return now })
	return &env{store: s, mailer: m, svc: svc}
}

func doctorReq(hh, mm int) Request {
	return Request{
		Source:    SourceDoctor,
		DoctorID:  "d1",
		PatientID: "p1",
		Date:      monday,
		Time:      caltime.NewClock(hh, mm, 0),
		Title:     "Control",
	}
}

func TestBookByDoctor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.Book(ctx, doctorReq(10, 0))
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, res.Appointment.Status)
	assert.Equal(t, model.DefaultDurationMins, res.Appointment.DurationMins)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, []string{mail.TemplateBooked}, e.mailer.templates)

	stored, err := e.store.GetAppointment(ctx, res.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", stored.PatientID)

	inbox, err := e.store.ListNotifications(ctx, "d1", true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, res.Appointment.ID, inbox[0].AppointmentID)
}

func TestBookByDoctorSurfacesOverlap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.Book(ctx, doctorReq(10, 0))
	require.NoError(t, err)

	second, err := e.svc.Book(ctx, doctorReq(10, 15))
	require.NoError(t, err)
	require.Len(t, second.Conflicts, 1)
	assert.Equal(t, first.Appointment.ID, second.Conflicts[0].ID)
}

func TestBookSelfService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	req := Request{
		Source:   SourceSelfService,
		DoctorID: "d1",
		Contact:  &Contact{FirstName: "Luis", LastName: "Vega", Email: " Luis@Example.com "},
		Date:     monday,
		Time:     caltime.NewClock(9, 30, 0),
		Title:    "Primera consulta",
	}
	res, err := e.svc.Book(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "luis@example.com", res.Patient.Email)
	assert.Equal(t, "d1", res.Patient.DoctorID)

	// Same email reuses the patient, same slot is refused.
	_, err = e.svc.Book(ctx, req)
	require.ErrorIs(t, err, ErrSlotTaken)

	req.Time = caltime.NewClock(11, 0, 0)
	again, err := e.svc.Book(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, res.Patient.ID, again.Patient.ID)
}

func TestBookValidation(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		mod  func(*Request)
	}{
		{"missing title", func(r *Request) { r.Title = "  " }},
		{"missing patient", func(r *Request) { r.PatientID = "" }},
		{"duration too short", func(r *Request) { r.DurationMins = 4 }},
		{"duration too long", func(r *Request) { r.DurationMins = 481 }},
		{"in the past", func(r *Request) { r.Time = caltime.NewClock(7, 59, 0) }},
		{"unknown source", func(r *Request) { r.Source = "fax" }},
		{"self-service outside hours", func(r *Request) {
			r.Source = SourceSelfService
			r.Contact = &Contact{FirstName: "Luis", Email: "luis@example.com"}
			r.Time = caltime.NewClock(17, 0, 0)
		}},
		{"self-service on sunday", func(r *Request) {
			r.Source = SourceSelfService
			r.Contact = &Contact{FirstName: "Luis", Email: "luis@example.com"}
			r.Date = caltime.NewDate(2025, time.September, 14)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := doctorReq(10, 0)
			tc.mod(&req)
			_, err := e.svc.Book(context.Background(), req)
			require.ErrorIs(t, err, engine.ErrValidation)
		})
	}
}

func TestBookUnknownReferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	req := doctorReq(10, 0)
	req.DoctorID = "ghost"
	_, err := e.svc.Book(ctx, req)
	require.ErrorIs(t, err, engine.ErrNotFound)

	require.NoError(t, e.store.CreatePatient(ctx, &model.Patient{ID: "p2", DoctorID: "d2", FirstName: "Otro"}))
	req = doctorReq(10, 0)
	req.PatientID = "p2"
	_, err = e.svc.Book(ctx, req)
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestAvailableSlots(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Book(ctx, doctorReq(10, 0))
	require.NoError(t, err)
	cancelled := &model.Appointment{
		ID: "c1", DoctorID: "d1", PatientID: "p1", Date: monday,
		Time: caltime.NewClock(11, 0, 0), DurationMins: 30, Status: model.StatusCancelled,
	}
	require.NoError(t, e.store.CreateAppointment(ctx, cancelled))

	at := time.Date(2025, time.September, 8, 9, 10, 0, 0, time.UTC)
	slots, err := e.svc.AvailableSlots(ctx, "d1", monday, at)
	require.NoError(t, err)

	var got []string
	for _, s := range slots {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{"09:30", "10:30", "11:00", "11:30"}, got)
}

func TestAvailableSlotsClosedDay(t *testing.T) {
	e := newEnv(t)
	slots, err := e.svc.AvailableSlots(context.Background(), "d1", caltime.NewDate(2025, time.September, 13), now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestScheduleFromRejectsInvertedDay(t *testing.T) {
	_, err := ScheduleFrom(config.ScheduleConfig{DayStart: "18:00", DayEnd: "09:00", SlotMinutes: 30})
	require.Error(t, err)
}

// gatedStore holds every ListAppointments caller until n of them have read,
// so concurrent bookings all pass the early overlap check.
type gatedStore struct {
	*memstore.Store
	gate *sync.WaitGroup
}

func (g gatedStore) ListAppointments(ctx context.Context, doctorID string) ([]*model.Appointment, error) {
	all, err := g.Store.ListAppointments(ctx, doctorID)
	g.gate.Done()
	g.gate.Wait()
	return all, err
}

func gated(e *env, n int) *Service {
	gate := &sync.WaitGroup{}
	gate.Add(n)
	e.svc.store = gatedStore{Store: e.store, gate: gate}
	return e.svc
}

func TestConcurrentSelfServiceBookingsOneWins(t *testing.T) {
	e := newEnv(t)
	const n = 4
	svc := gated(e, n)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), Request{
				Source:   SourceSelfService,
				DoctorID: "d1",
				Contact:  &Contact{FirstName: "P", Email: fmt.Sprintf("p%d@example.com", i)},
				Date:     monday,
				Time:     caltime.NewClock(10, 0, 0),
				Title:    "Consulta",
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	assert.Equal(t, 1, won)

	all, err := e.store.ListAppointments(context.Background(), "d1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConcurrentDoctorBookingsSurfaceEachOther(t *testing.T) {
	e := newEnv(t)
	svc := gated(e, 2)

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Book(context.Background(), doctorReq(10, 0))
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])

	// whichever inserted second sees the first
	surfaced := len(results[0].Conflicts) + len(results[1].Conflicts)
	assert.Equal(t, 1, surfaced)
}
