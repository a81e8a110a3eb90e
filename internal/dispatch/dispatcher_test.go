package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
	"clinic-scheduler/internal/store/memstore"
)

type failingPatcher struct {
	*memstore.Store
}

func (failingPatcher) PatchPatient(context.Context, string, model.PatientPatch) (*model.Patient, error) {
	return nil, errors.New("patients table locked")
}

type recordingMailer struct {
	calls []map[string]string
	err   error
}

func (m *recordingMailer) Send(_ context.Context, _ string, vars map[string]string) (mail.Receipt, error) {
	m.calls = append(m.calls, vars)
	if m.err != nil {
		return mail.Receipt{}, m.err
	}
	return mail.Receipt{MessageID: "msg-1"}, nil
}

func seed(t *testing.T) (*memstore.Store, *model.Appointment) {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.CreatePatient(ctx, &model.Patient{
		ID: "p1", DoctorID: "d1", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com",
	}))
	a := &model.Appointment{
		ID: "a1", DoctorID: "d1", PatientID: "p1",
		Date:   caltime.NewDate(2024, time.January, 15),
		Time:   caltime.NewClock(10, 0, 0),
		Status: model.StatusScheduled,
	}
	require.NoError(t, s.CreateAppointment(ctx, a))
	return s, a
}

func TestExecuteRunsInOrder(t *testing.T) {
	s, a := seed(t)
	m := &recordingMailer{}
	d := New(s, s, s, m, zap.NewNop(), nil)

	next := a.Clone()
	next.Status = model.StatusConfirmed
	rep, err := d.Execute(context.Background(), []Instruction{
		PersistAppointment(next, model.StatusScheduled),
		CreateNotification(&model.Notification{ID: "n1", RecipientID: "p1", RecipientKind: model.RecipientPatient}),
		SendEmail(mail.TemplateConfirmed, map[string]string{mail.VarPatientID: "p1"}),
	})
	require.NoError(t, err)

	kinds := make([]Kind, 0, len(rep.Outcomes))
	for _, o := range rep.Outcomes {
		kinds = append(kinds, o.Kind)
	}
	assert.Equal(t, []Kind{KindPersistAppointment, KindCreateNotification, KindSendEmail}, kinds)
	assert.Equal(t, "msg-1", rep.Outcomes[2].MessageID)

	got, err := s.GetAppointment(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	require.Len(t, m.calls, 1)
	assert.Equal(t, "ana@example.com", m.calls[0][mail.VarTo])
	assert.Equal(t, "Ana Ruiz", m.calls[0][mail.VarPatientName])
}

func TestExecuteBestEffortFailureContinues(t *testing.T) {
	s, a := seed(t)
	mc := metrics.NewCollector("test", prometheus.NewRegistry())
	d := New(s, failingPatcher{s}, s, &recordingMailer{err: errors.New("smtp down")}, zap.NewNop(), mc)

	phone := "555"
	next := a.Clone()
	next.Status = model.StatusCompleted
	rep, err := d.Execute(context.Background(), []Instruction{
		PersistAppointment(next, model.StatusScheduled),
		PatchPatient("p1", &model.PatientPatch{Phone: &phone}),
		SendEmail(mail.TemplateConfirmed, map[string]string{mail.VarPatientID: "p1"}),
		CreateNotification(&model.Notification{ID: "n1", RecipientID: "d1", RecipientKind: model.RecipientDoctor}),
	})
	require.NoError(t, err)
	assert.True(t, rep.Failed(KindPatchPatient))
	assert.True(t, rep.Failed(KindSendEmail))
	assert.True(t, rep.Attempted(KindCreateNotification))
	assert.False(t, rep.Failed(KindCreateNotification))
}

func TestExecuteFatalFailureStops(t *testing.T) {
	s, a := seed(t)
	d := New(s, s, s, &recordingMailer{}, zap.NewNop(), nil)

	next := a.Clone()
	next.Status = model.StatusCancelled
	rep, err := d.Execute(context.Background(), []Instruction{
		PersistAppointment(next, model.StatusConfirmed),
		CreateNotification(&model.Notification{ID: "n1", RecipientID: "p1"}),
	})
	require.ErrorIs(t, err, store.ErrConflict)
	assert.Len(t, rep.Outcomes, 1)
	assert.False(t, rep.Attempted(KindCreateNotification))
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	s, a := seed(t)
	d := New(s, s, s, &recordingMailer{}, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Execute(ctx, []Instruction{PersistAppointment(a, model.StatusScheduled)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSendEmailUnknownPatient(t *testing.T) {
	s, _ := seed(t)
	m := &recordingMailer{}
	d := New(s, s, s, m, zap.NewNop(), nil)

	rep, err := d.Execute(context.Background(), []Instruction{
		SendEmail(mail.TemplateReminder, map[string]string{mail.VarPatientID: "ghost"}),
	})
	require.NoError(t, err)
	assert.True(t, rep.Failed(KindSendEmail))
	assert.Empty(t, m.calls)
}

type downInbox struct{ *memstore.Store }

func (downInbox) CreateNotification(context.Context, *model.Notification) error {
	return errors.New("inbox down")
}

func TestExecuteFailureAfterWriteIsReported(t *testing.T) {
	s, a := seed(t)
	m := &recordingMailer{}
	mc := metrics.NewCollector("test", prometheus.NewRegistry())
	d := New(s, s, downInbox{s}, m, zap.NewNop(), mc)

	next := a.Clone()
	next.Status = model.StatusCancelled
	rep, err := d.Execute(context.Background(), []Instruction{
		PersistAppointment(next, model.StatusScheduled),
		CreateNotification(&model.Notification{ID: "n1", RecipientID: "p1", RecipientKind: model.RecipientPatient}),
		SendEmail(mail.TemplateCancelled, map[string]string{mail.VarPatientID: "p1"}),
	})
	require.NoError(t, err)
	assert.True(t, rep.Committed)
	assert.True(t, rep.Failed(KindCreateNotification))
	assert.Len(t, m.calls, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.DispatchFailures.WithLabelValues(string(KindCreateNotification), "false")))

	got, err := s.GetAppointment(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestExecuteNotificationWithoutWriteIsFatal(t *testing.T) {
	s, _ := seed(t)
	m := &recordingMailer{}
	d := New(s, s, downInbox{s}, m, zap.NewNop(), nil)

	rep, err := d.Execute(context.Background(), []Instruction{
		CreateNotification(&model.Notification{ID: "n1", RecipientID: "p1", RecipientKind: model.RecipientPatient}),
		SendEmail(mail.TemplateReminder, map[string]string{mail.VarPatientID: "p1"}),
	})
	require.Error(t, err)
	assert.False(t, rep.Committed)
	assert.Empty(t, m.calls)
}
