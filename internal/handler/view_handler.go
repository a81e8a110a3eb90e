package handler

import (
	"context"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/alert"
	"clinic-scheduler/internal/calendar"
	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/engine"
)

func (h *Handler) GetCalendar(ctx context.Context, req *pb.GetCalendarRequest) (*pb.GetCalendarResponse, error) {
	g, err := calendar.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, h.toStatus("get calendar", engine.Invalid("granularity", err.Error()))
	}
	ref := caltime.DateOf(h.now())
	if req.Date != "" {
		if ref, err = parseDate("date", req.Date); err != nil {
			return nil, h.toStatus("get calendar", err)
		}
	}

	v, err := h.calendar.Load(ctx, uid(ctx), ref, g)
	if err != nil {
		return nil, h.toStatus("get calendar", err)
	}

	out := &pb.GetCalendarResponse{
		Granularity: string(v.Granularity),
		From:        v.From.String(),
		To:          v.To.String(),
		Days:        make([]*pb.CalendarDay, 0, len(v.Days)),
	}
	for _, d := range v.Days {
		day := &pb.CalendarDay{Date: d.Date.String(), InPeriod: d.InPeriod, IsToday: d.IsToday}
		for _, e := range d.Entries {
			day.Entries = append(day.Entries, &pb.CalendarEntry{
				Appointment:      toProto(e.Appointment),
				PatientFirstName: e.Patient.FirstName,
				PatientLastName:  e.Patient.LastName,
				PatientPhone:     e.Patient.Phone,
				PatientEmail:     e.Patient.Email,
				PatientMissing:   e.Patient.Missing,
			})
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}

func (h *Handler) ListUpcoming(ctx context.Context, req *pb.ListUpcomingRequest) (*pb.ListUpcomingResponse, error) {
	appts, err := h.store.ListAppointments(ctx, uid(ctx))
	if err != nil {
		return nil, h.toStatus("list upcoming", err)
	}

	ups := alert.ListUpcoming(h.now(), appts)
	if req.Limit > 0 && int(req.Limit) < len(ups) {
		ups = ups[:req.Limit]
	}
	out := make([]*pb.UpcomingAppointment, len(ups))
	for i, u := range ups {
		out[i] = &pb.UpcomingAppointment{
			Appointment: toProto(u.Appointment),
			Level:       string(u.Classification.Level),
			Message:     u.Classification.Message,
			Minutes:     int32(u.Classification.Minutes),
		}
	}
	return &pb.ListUpcomingResponse{Appointments: out}, nil
}
