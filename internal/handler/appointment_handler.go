package handler

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/booking"
	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
)

func (h *Handler) CreateAppointment(ctx context.Context, req *pb.CreateAppointmentRequest) (*pb.AppointmentResponse, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, h.toStatus("create appointment", err)
	}
	at, err := parseClock("time", req.Time)
	if err != nil {
		return nil, h.toStatus("create appointment", err)
	}

	res, err := h.booking.Book(ctx, booking.Request{
		Source:       booking.SourceDoctor,
		DoctorID:     uid(ctx),
		PatientID:    req.PatientId,
		Date:         date,
		Time:         at,
		DurationMins: int(req.DurationMins),
		Title:        req.Title,
		Description:  req.Description,
	})
	if err != nil {
		return nil, h.toStatus("create appointment", err)
	}
	return &pb.AppointmentResponse{
		Appointment: toProto(res.Appointment),
		Conflicts:   toProtos(res.Conflicts),
	}, nil
}

// BookAppointment is the public self-service flow.
func (h *Handler) BookAppointment(ctx context.Context, req *pb.BookAppointmentRequest) (*pb.AppointmentResponse, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, h.toStatus("book appointment", err)
	}
	at, err := parseClock("time", req.Time)
	if err != nil {
		return nil, h.toStatus("book appointment", err)
	}

	res, err := h.booking.Book(ctx, booking.Request{
		Source:   booking.SourceSelfService,
		DoctorID: req.DoctorId,
		Contact: &booking.Contact{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
		},
		Date:        date,
		Time:        at,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, h.toStatus("book appointment", err)
	}
	return &pb.AppointmentResponse{Appointment: toProto(res.Appointment)}, nil
}

func (h *Handler) ListAvailableSlots(ctx context.Context, req *pb.ListAvailableSlotsRequest) (*pb.ListAvailableSlotsResponse, error) {
	if req.DoctorId == "" {
		return nil, status.Error(codes.InvalidArgument, "doctor_id required")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, h.toStatus("list slots", err)
	}

	slots, err := h.booking.AvailableSlots(ctx, req.DoctorId, date, h.now())
	if err != nil {
		return nil, h.toStatus("list slots", err)
	}
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.HHMM()
	}
	return &pb.ListAvailableSlotsResponse{Times: out}, nil
}

func (h *Handler) ListAppointments(ctx context.Context, req *pb.ListAppointmentsRequest) (*pb.ListAppointmentsResponse, error) {
	doctorID := uid(ctx)

	var from, to caltime.Date
	var err error
	if req.From != "" {
		if from, err = parseDate("from", req.From); err != nil {
			return nil, h.toStatus("list appointments", err)
		}
	}
	if req.To != "" {
		if to, err = parseDate("to", req.To); err != nil {
			return nil, h.toStatus("list appointments", err)
		}
	}
	if req.Status != "" && !model.Status(req.Status).Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown status %q", req.Status)
	}

	var appts []*model.Appointment
	if req.PatientId != "" {
		appts, err = h.store.ListPatientAppointments(ctx, req.PatientId)
	} else {
		appts, err = h.store.ListAppointments(ctx, doctorID)
	}
	if err != nil {
		return nil, h.toStatus("list appointments", err)
	}

	out := make([]*pb.Appointment, 0, len(appts))
	for _, a := range appts {
		switch {
		case a.DoctorID != doctorID:
			continue
		case !from.IsZero() && a.Date.Before(from):
			continue
		case !to.IsZero() && a.Date.After(to):
			continue
		case req.Status != "" && a.Status != model.Status(req.Status):
			continue
		}
		out = append(out, toProto(a))
	}
	return &pb.ListAppointmentsResponse{Appointments: out}, nil
}

func (h *Handler) GetAppointment(ctx context.Context, req *pb.GetAppointmentRequest) (*pb.AppointmentResponse, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}

	a, err := h.store.GetAppointment(ctx, req.Id)
	if err != nil {
		return nil, h.toStatus("get appointment", err)
	}
	// ownership: 404 rather than 403 so existence stays hidden
	if a.DoctorID != uid(ctx) {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return &pb.AppointmentResponse{Appointment: toProto(a)}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *pb.UpdateAppointmentRequest) (*pb.AppointmentResponse, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	ch, err := changesFrom(req)
	if err != nil {
		return nil, h.toStatus("update appointment", err)
	}

	res, err := h.engine.ApplyTransitionFor(ctx, uid(ctx), req.Id, ch)
	if err != nil {
		return nil, h.toStatus("update appointment", err)
	}
	h.log.Info("appointment updated",
		zap.String("appointment_id", res.Appointment.ID),
		zap.String("status", string(res.Appointment.Status)),
		zap.Int("side_effects", len(res.Instructions)))

	return &pb.AppointmentResponse{
		Appointment: toProto(res.Appointment),
		Conflicts:   toProtos(res.Conflicts),
		SideEffects: sideEffects(res.Report, res.Instructions),
	}, nil
}

// DeleteAppointment removes the record outright. Normal flows cancel instead.
func (h *Handler) DeleteAppointment(ctx context.Context, req *pb.DeleteAppointmentRequest) (*pb.Empty, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := h.store.DeleteAppointment(ctx, req.Id, uid(ctx)); err != nil {
		return nil, h.toStatus("delete appointment", err)
	}
	h.log.Warn("appointment deleted",
		zap.String("appointment_id", req.Id),
		zap.String("doctor_id", uid(ctx)))
	return &pb.Empty{}, nil
}
