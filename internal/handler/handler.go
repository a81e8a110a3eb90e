package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/booking"
	"clinic-scheduler/internal/calendar"
	"clinic-scheduler/internal/engine"
	"clinic-scheduler/internal/middleware"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

// Store is the persistence the handlers read and write directly. Appointment
// updates go through the engine instead.
type Store interface {
	CreateDoctor(ctx context.Context, d *model.Doctor) error
	DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error)

	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, doctorID string) ([]*model.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID string) ([]*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id, doctorID string) error

	CreatePatient(ctx context.Context, p *model.Patient) error
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	ListPatients(ctx context.Context, doctorID string) ([]*model.Patient, error)
	PatchPatient(ctx context.Context, id string, patch model.PatientPatch) (*model.Patient, error)

	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) error
}

type Deps struct {
	Store    Store
	Engine   *engine.Service
	Booking  *booking.Service
	Calendar *calendar.Aggregator
	Secret   string
	Log      *zap.Logger
	// Now defaults to time.Now. Its wall clock is the clinic clock.
	Now func() time.Time
}

type Handler struct {
	pb.UnimplementedClinicServiceServer
	store    Store
	engine   *engine.Service
	booking  *booking.Service
	calendar *calendar.Aggregator
	secret   string
	log      *zap.Logger
	now      func() time.Time
}

func New(d Deps) *Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{
		store:    d.Store,
		engine:   d.Engine,
		booking:  d.Booking,
		calendar: d.Calendar,
		secret:   d.Secret,
		log:      d.Log,
		now:      d.Now,
	}
}

var _ pb.ClinicServiceServer = (*Handler)(nil)

func uid(ctx context.Context) string {
	return middleware.DoctorID(ctx)
}

// toStatus maps domain errors onto gRPC codes. Unexpected errors are logged
// and hidden behind Internal.
func (h *Handler) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, engine.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, engine.ErrConflict), errors.Is(err, store.ErrConflict):
		return status.Error(codes.Aborted, "appointment was modified concurrently, reload and retry")
	case errors.Is(err, booking.ErrSlotTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, engine.ErrDownstream):
		h.log.Error(op+" failed", zap.Error(err))
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	}
	h.log.Error(op+" failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
