package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/model"
)

type AppointmentWriter interface {
	ReserveAppointment(ctx context.Context, a *model.Appointment, exclusive bool) ([]*model.Appointment, error)
	UpdateAppointment(ctx context.Context, a *model.Appointment, expected model.Status) error
}

type PatientStore interface {
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	PatchPatient(ctx context.Context, id string, patch model.PatientPatch) (*model.Patient, error)
}

type NotificationWriter interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
}

type Mailer interface {
	Send(ctx context.Context, template string, vars map[string]string) (mail.Receipt, error)
}

// Executor runs an ordered instruction list.
type Executor interface {
	Execute(ctx context.Context, ins []Instruction) (Report, error)
}

type Dispatcher struct {
	appointments  AppointmentWriter
	patients      PatientStore
	notifications NotificationWriter
	mailer        Mailer
	log           *zap.Logger
	metrics       *metrics.Collector
}

func New(a AppointmentWriter, p PatientStore, n NotificationWriter, m Mailer, log *zap.Logger, mc *metrics.Collector) *Dispatcher {
	return &Dispatcher{appointments: a, patients: p, notifications: n, mailer: m, log: log, metrics: mc}
}

// Execute runs ins in order. The first failing instruction that is not
// best-effort stops execution and its error is returned wrapped with the
// instruction kind. Once an appointment write has succeeded nothing later
// is fatal: the write cannot be undone, so later failures are logged and
// left in the report. The report lists every attempt.
func (d *Dispatcher) Execute(ctx context.Context, ins []Instruction) (Report, error) {
	var rep Report
	for _, in := range ins {
		if err := ctx.Err(); err != nil && !rep.Committed {
			return rep, fmt.Errorf("%s: %w", in.Kind, err)
		}
		out := d.run(ctx, in)
		rep.Outcomes = append(rep.Outcomes, out)
		if out.Err == nil {
			if in.Kind == KindPersistAppointment {
				rep.Committed = true
			}
			continue
		}
		if d.metrics != nil {
			d.metrics.DispatchFailures.WithLabelValues(string(in.Kind), strconv.FormatBool(!in.BestEffort && !rep.Committed)).Inc()
		}
		switch {
		case in.BestEffort:
			d.log.Warn("best-effort instruction failed",
				zap.String("kind", string(in.Kind)),
				zap.Error(out.Err))
		case rep.Committed:
			d.log.Error("instruction failed after appointment write",
				zap.String("kind", string(in.Kind)),
				zap.Error(out.Err))
		default:
			return rep, fmt.Errorf("%s: %w", in.Kind, out.Err)
		}
	}
	return rep, nil
}

func (d *Dispatcher) run(ctx context.Context, in Instruction) Outcome {
	out := Outcome{Kind: in.Kind}
	switch in.Kind {
	case KindPersistAppointment:
		if in.Create {
			out.Overlaps, out.Err = d.appointments.ReserveAppointment(ctx, in.Appointment, in.Exclusive)
		} else {
			out.Err = d.appointments.UpdateAppointment(ctx, in.Appointment, in.ExpectedStatus)
		}
	case KindPatchPatient:
		_, out.Err = d.patients.PatchPatient(ctx, in.PatientID, *in.Patch)
	case KindCreateNotification:
		out.Err = d.notifications.CreateNotification(ctx, in.Notification)
	case KindSendEmail:
		vars, err := d.withRecipient(ctx, in.Vars)
		if err != nil {
			out.Err = err
			break
		}
		var rc mail.Receipt
		rc, out.Err = d.mailer.Send(ctx, in.Template, vars)
		out.MessageID = rc.MessageID
	default:
		out.Err = fmt.Errorf("unknown instruction kind %q", in.Kind)
	}
	return out
}

// withRecipient fills the address and name from the patient record when the
// emitter only knew the patient id.
func (d *Dispatcher) withRecipient(ctx context.Context, vars map[string]string) (map[string]string, error) {
	if vars[mail.VarTo] != "" || vars[mail.VarPatientID] == "" {
		return vars, nil
	}
	p, err := d.patients.GetPatient(ctx, vars[mail.VarPatientID])
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}
	out := make(map[string]string, len(vars)+2)
	for k, v := range vars {
		out[k] = v
	}
	out[mail.VarTo] = p.Email
	if out[mail.VarPatientName] == "" {
		out[mail.VarPatientName] = p.FullName()
	}
	return out, nil
}
