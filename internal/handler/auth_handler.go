package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/model"
	"clinic-scheduler/internal/store"
)

func (h *Handler) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "all fields required")
	}
	if len(req.Password) < 8 {
		return nil, status.Error(codes.InvalidArgument, "password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, h.toStatus("hash password", err)
	}

	d := &model.Doctor{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Specialty:    strings.TrimSpace(req.Specialty),
	}
	if err := h.store.CreateDoctor(ctx, d); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// don't reveal which emails are registered
			return nil, status.Error(codes.AlreadyExists, "registration failed")
		}
		return nil, h.toStatus("create doctor", err)
	}

	tok, err := auth.MakeToken(d.ID, h.secret)
	if err != nil {
		return nil, h.toStatus("sign token", err)
	}
	h.log.Info("doctor registered", zap.String("doctor_id", d.ID))
	return &pb.RegisterResponse{DoctorId: d.ID, Token: tok}, nil
}

func (h *Handler) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password required")
	}

	d, err := h.store.DoctorByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		return nil, h.toStatus("find doctor", err)
	}
	if !auth.CheckPassword(d.PasswordHash, req.Password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := auth.MakeToken(d.ID, h.secret)
	if err != nil {
		return nil, h.toStatus("sign token", err)
	}
	return &pb.LoginResponse{Token: tok, DoctorId: d.ID, Name: d.Name}, nil
}
