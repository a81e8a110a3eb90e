package handler

import (
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/dispatch"
	"clinic-scheduler/internal/engine"
	"clinic-scheduler/internal/model"
)

func ts(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func toProto(a *model.Appointment) *pb.Appointment {
	out := &pb.Appointment{
		Id:              a.ID,
		DoctorId:        a.DoctorID,
		PatientId:       a.PatientID,
		Date:            a.Date.String(),
		Time:            a.Time.String(),
		DurationMins:    int32(a.DurationMins),
		Title:           a.Title,
		Description:     a.Description,
		Status:          string(a.Status),
		NoShowReason:    a.NoShowReason,
		ClinicalHistory: string(a.ClinicalHistory),
		Notes:           a.Notes,
		CreatedAt:       ts(a.CreatedAt),
		UpdatedAt:       ts(a.UpdatedAt),
	}
	if a.ReminderSentAt != nil {
		out.ReminderSentAt = ts(*a.ReminderSentAt)
	}
	return out
}

func toProtos(in []*model.Appointment) []*pb.Appointment {
	out := make([]*pb.Appointment, len(in))
	for i, a := range in {
		out[i] = toProto(a)
	}
	return out
}

func patientToProto(p *model.Patient) *pb.Patient {
	out := &pb.Patient{
		Id:        p.ID,
		DoctorId:  p.DoctorID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Email:     p.Email,
		Gender:    p.Gender,
		Address:   p.Address,
		CreatedAt: ts(p.CreatedAt),
		UpdatedAt: ts(p.UpdatedAt),
	}
	if p.DateOfBirth != nil {
		out.DateOfBirth = p.DateOfBirth.String()
	}
	return out
}

func notificationToProto(n *model.Notification) *pb.Notification {
	return &pb.Notification{
		Id:            n.ID,
		RecipientId:   n.RecipientID,
		RecipientKind: string(n.RecipientKind),
		Title:         n.Title,
		Message:       n.Message,
		Type:          string(n.Type),
		Read:          n.Read,
		AppointmentId: n.AppointmentID,
		CreatedAt:     ts(n.CreatedAt),
	}
}

func sideEffects(rep dispatch.Report, ins []dispatch.Instruction) []*pb.SideEffect {
	out := make([]*pb.SideEffect, 0, len(rep.Outcomes))
	for i, o := range rep.Outcomes {
		se := &pb.SideEffect{Kind: string(o.Kind)}
		if i < len(ins) {
			se.BestEffort = ins[i].BestEffort
		}
		if o.Err != nil {
			se.Error = o.Err.Error()
		}
		out = append(out, se)
	}
	return out
}

func parseDate(field, s string) (caltime.Date, error) {
	d, err := caltime.ParseDate(s)
	if err != nil {
		return caltime.Date{}, engine.Invalid(field, err.Error())
	}
	return d, nil
}

func parseClock(field, s string) (caltime.Clock, error) {
	c, err := caltime.ParseClock(s)
	if err != nil {
		return caltime.Clock{}, engine.Invalid(field, err.Error())
	}
	return c, nil
}

func patchFrom(d *pb.PatientData) (*model.PatientPatch, error) {
	if d == nil {
		return nil, nil
	}
	p := &model.PatientPatch{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Gender:    d.Gender,
		Address:   d.Address,
	}
	if d.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*d.Email))
		p.Email = &e
	}
	if d.DateOfBirth != nil {
		dob, err := parseDate("date_of_birth", *d.DateOfBirth)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = &dob
	}
	return p, nil
}

func changesFrom(req *pb.UpdateAppointmentRequest) (engine.Changes, error) {
	var ch engine.Changes
	if req.Status != nil {
		s := model.Status(*req.Status)
		ch.Status = &s
	}
	if req.Date != nil {
		d, err := parseDate("date", *req.Date)
		if err != nil {
			return ch, err
		}
		ch.Date = &d
	}
	if req.Time != nil {
		c, err := parseClock("time", *req.Time)
		if err != nil {
			return ch, err
		}
		ch.Time = &c
	}
	ch.NoShowReason = req.NoShowReason
	ch.Notes = req.Notes
	if req.ClinicalHistory != nil {
		ch.ClinicalHistory = []byte(*req.ClinicalHistory)
	}
	patch, err := patchFrom(req.PatientData)
	if err != nil {
		return ch, err
	}
	ch.PatientData = patch
	return ch, nil
}
