// Package engine validates appointment updates and turns them into an
// ordered list of dispatch instructions. Plan is pure; Service adds the
// store read and hands the instructions to an executor.
package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/mail"
	"clinic-scheduler/internal/model"
)

var allowed = map[model.Status][]model.Status{
	model.StatusScheduled: {model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
}

// CanTransition reports whether from may move to to. Terminal statuses have
// no outgoing edges.
func CanTransition(from, to model.Status) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Plan computes the next appointment snapshot and the instructions that
// persist it. cur is not modified. Setting the current status again is a
// no-op for the status field.
func Plan(cur *model.Appointment, ch Changes, now time.Time) (*model.Appointment, []dispatch.Instruction, error) {
	if ch.Empty() {
		return nil, nil, ErrNothingToUpdate
	}

	from, to := cur.Status, cur.Status
	if ch.Status != nil {
		if !ch.Status.Valid() {
			return nil, nil, Invalid("status", fmt.Sprintf("unknown status %q", *ch.Status))
		}
		to = *ch.Status
		if to != from && !CanTransition(from, to) {
			return nil, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
	}

	moved := (ch.Date != nil && !ch.Date.Equal(cur.Date)) ||
		(ch.Time != nil && ch.Time.Compare(cur.Time) != 0)
	if moved && to.Terminal() {
		return nil, nil, fmt.Errorf("%w: cannot reschedule a %s appointment", ErrInvalidTransition, to)
	}

	if ch.ClinicalHistory != nil && !json.Valid(ch.ClinicalHistory) {
		return nil, nil, Invalid("clinical_history", "not a JSON document")
	}

	next := cur.Clone()
	next.Status = to
	if ch.Date != nil {
		next.Date = *ch.Date
	}
	if ch.Time != nil {
		next.Time = *ch.Time
	}
	if ch.NoShowReason != nil {
		next.NoShowReason = *ch.NoShowReason
	}
	if ch.ClinicalHistory != nil {
		next.ClinicalHistory = append(json.RawMessage(nil), ch.ClinicalHistory...)
	}
	if ch.Notes != nil {
		next.Notes = *ch.Notes
	}
	if moved {
		next.ReminderSentAt = nil
	}
	next.UpdatedAt = now

	ins := []dispatch.Instruction{dispatch.PersistAppointment(next, from)}
	if to == model.StatusCompleted && !ch.PatientData.Empty() {
		ins = append(ins, dispatch.PatchPatient(next.PatientID, ch.PatientData))
	}
	if to != from {
		ins = append(ins, statusEffects(next, now)...)
	} else if moved {
		ins = append(ins, notifyPatient(next, now, "Cita reprogramada",
			fmt.Sprintf("Tu cita fue movida al %s a las %s.", next.Date, next.Time.HHMM()), model.NotifyInfo),
			dispatch.SendEmail(mail.TemplateRescheduled, EmailVars(next)))
	}
	return next, ins, nil
}

func statusEffects(a *model.Appointment, now time.Time) []dispatch.Instruction {
	when := fmt.Sprintf("%s a las %s", a.Date, a.Time.HHMM())
	switch a.Status {
	case model.StatusConfirmed:
		return []dispatch.Instruction{
			notifyPatient(a, now, "Cita confirmada", "Tu cita del "+when+" está confirmada.", model.NotifySuccess),
			dispatch.SendEmail(mail.TemplateConfirmed, EmailVars(a)),
		}
	case model.StatusCancelled:
		return []dispatch.Instruction{
			notifyPatient(a, now, "Cita cancelada", "Tu cita del "+when+" fue cancelada.", model.NotifyWarning),
			dispatch.SendEmail(mail.TemplateCancelled, EmailVars(a)),
		}
	case model.StatusNoShow:
		return []dispatch.Instruction{
			notifyPatient(a, now, "Inasistencia registrada", "No asististe a tu cita del "+when+".", model.NotifyWarning),
			dispatch.SendEmail(mail.TemplateMissed, EmailVars(a)),
		}
	case model.StatusCompleted:
		return []dispatch.Instruction{dispatch.CreateNotification(&model.Notification{
			ID:            uuid.NewString(),
			RecipientID:   a.DoctorID,
			RecipientKind: model.RecipientDoctor,
			Title:         "Consulta finalizada",
			Message:       fmt.Sprintf("%q del %s quedó completada.", a.Title, when),
			Type:          model.NotifySuccess,
			AppointmentID: a.ID,
			CreatedAt:     now,
		})}
	}
	return nil
}

func notifyPatient(a *model.Appointment, now time.Time, title, msg string, typ model.NotificationType) dispatch.Instruction {
	return dispatch.CreateNotification(&model.Notification{
		ID:            uuid.NewString(),
		RecipientID:   a.PatientID,
		RecipientKind: model.RecipientPatient,
		Title:         title,
		Message:       msg,
		Type:          typ,
		AppointmentID: a.ID,
		CreatedAt:     now,
	})
}

// EmailVars are the template variables shared by every appointment email.
// The dispatcher resolves the address from patient_id.
func EmailVars(a *model.Appointment) map[string]string {
	return map[string]string{
		mail.VarPatientID: a.PatientID,
		"appointment_id":  a.ID,
		"title":           a.Title,
		"date":            a.Date.String(),
		"time":            a.Time.HHMM(),
	}
}
