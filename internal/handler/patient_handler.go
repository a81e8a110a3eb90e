package handler

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/model"
)

func (h *Handler) ListPatients(ctx context.Context, _ *pb.ListPatientsRequest) (*pb.ListPatientsResponse, error) {
	ps, err := h.store.ListPatients(ctx, uid(ctx))
	if err != nil {
		return nil, h.toStatus("list patients", err)
	}
	out := make([]*pb.Patient, len(ps))
	for i, p := range ps {
		out[i] = patientToProto(p)
	}
	return &pb.ListPatientsResponse{Patients: out}, nil
}

func (h *Handler) CreatePatient(ctx context.Context, req *pb.CreatePatientRequest) (*pb.PatientResponse, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, status.Error(codes.InvalidArgument, "first_name required")
	}

	now := h.now().UTC()
	p := &model.Patient{
		ID:        uuid.New().String(),
		DoctorID:  uid(ctx),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Gender:    req.Gender,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate("date_of_birth", req.DateOfBirth)
		if err != nil {
			return nil, h.toStatus("create patient", err)
		}
		p.DateOfBirth = &dob
	}

	if err := h.store.CreatePatient(ctx, p); err != nil {
		return nil, h.toStatus("create patient", err)
	}
	return &pb.PatientResponse{Patient: patientToProto(p)}, nil
}

func (h *Handler) UpdatePatient(ctx context.Context, req *pb.UpdatePatientRequest) (*pb.PatientResponse, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	patch, err := patchFrom(req.Data)
	if err != nil {
		return nil, h.toStatus("update patient", err)
	}
	if patch.Empty() {
		return nil, status.Error(codes.InvalidArgument, "nothing to update")
	}

	cur, err := h.store.GetPatient(ctx, req.Id)
	if err != nil {
		return nil, h.toStatus("update patient", err)
	}
	if cur.DoctorID != uid(ctx) {
		return nil, status.Error(codes.NotFound, "not found")
	}

	p, err := h.store.PatchPatient(ctx, req.Id, *patch)
	if err != nil {
		return nil, h.toStatus("update patient", err)
	}
	return &pb.PatientResponse{Patient: patientToProto(p)}, nil
}
