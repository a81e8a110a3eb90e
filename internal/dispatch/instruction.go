// Package dispatch defines the side-effect instructions produced by the
// scheduling engine and executes them against the store, the notification
// inbox and the mailer.
package dispatch

import (
	"clinic-scheduler/internal/model"
)

type Kind string

const (
	KindPersistAppointment Kind = "persistAppointment"
	KindPatchPatient       Kind = "patchPatient"
	KindCreateNotification Kind = "createNotification"
	KindSendEmail          Kind = "sendEmail"
)

// Instruction describes one side effect. Only the fields for its Kind are set.
type Instruction struct {
	Kind Kind
	// BestEffort failures are logged and reported but do not stop execution.
	BestEffort bool

	Appointment *model.Appointment
	// ExpectedStatus guards the update together with Appointment.Version;
	// the write fails with a conflict when the stored row differs in either.
	ExpectedStatus model.Status
	// Create inserts Appointment instead of updating it.
	Create bool
	// Exclusive refuses the insert when it would overlap an active
	// appointment of the same doctor.
	Exclusive bool

	PatientID string
	Patch     *model.PatientPatch

	Notification *model.Notification

	Template string
	Vars     map[string]string
}

func PersistAppointment(a *model.Appointment, expected model.Status) Instruction {
	return Instruction{Kind: KindPersistAppointment, Appointment: a, ExpectedStatus: expected}
}

func InsertAppointment(a *model.Appointment, exclusive bool) Instruction {
	return Instruction{Kind: KindPersistAppointment, Appointment: a, Create: true, Exclusive: exclusive}
}

func PatchPatient(patientID string, p *model.PatientPatch) Instruction {
	return Instruction{Kind: KindPatchPatient, BestEffort: true, PatientID: patientID, Patch: p}
}

func CreateNotification(n *model.Notification) Instruction {
	return Instruction{Kind: KindCreateNotification, Notification: n}
}

func SendEmail(template string, vars map[string]string) Instruction {
	return Instruction{Kind: KindSendEmail, BestEffort: true, Template: template, Vars: vars}
}

// Outcome records one executed instruction.
type Outcome struct {
	Kind      Kind
	Err       error
	MessageID string
	// Overlaps lists the active appointments an insert found in its range.
	Overlaps []*model.Appointment
}

type Report struct {
	Outcomes []Outcome
	// Committed is set once an appointment write succeeded.
	Committed bool
}

// Attempted reports whether an instruction of kind k was executed.
func (r Report) Attempted(k Kind) bool {
	for _, o := range r.Outcomes {
		if o.Kind == k {
			return true
		}
	}
	return false
}

// Overlaps returns what the appointment insert found in its range.
func (r Report) Overlaps() []*model.Appointment {
	for _, o := range r.Outcomes {
		if o.Kind == KindPersistAppointment {
			return o.Overlaps
		}
	}
	return nil
}

// Failed reports whether any instruction of kind k returned an error.
func (r Report) Failed(k Kind) bool {
	for _, o := range r.Outcomes {
		if o.Kind == k && o.Err != nil {
			return true
		}
	}
	return false
}
