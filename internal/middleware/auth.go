package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/auth"
)

type ctxKey string

const DoctorIDKey ctxKey = "doctor_id"

// open methods skip auth and are rate limited instead.
var open = map[string]bool{
	pb.FullMethod("Register"):           true,
	pb.FullMethod("Login"):              true,
	pb.FullMethod("BookAppointment"):    true,
	pb.FullMethod("ListAvailableSlots"): true,
}

// IsOpen reports whether method is callable without a token.
func IsOpen(method string) bool { return open[method] }

// WithDoctorID returns ctx carrying an authenticated doctor id.
func WithDoctorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DoctorIDKey, id)
}

// DoctorID returns the authenticated doctor, or "" on open methods.
func DoctorID(ctx context.Context) string {
	id, _ := ctx.Value(DoctorIDKey).(string)
	return id
}

// bearerToken extracts the token from "authorization: Bearer <jwt>".
func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	for _, v := range md.Get("authorization") {
		scheme, tok, found := strings.Cut(v, " ")
		if found && strings.EqualFold(scheme, "bearer") && strings.TrimSpace(tok) != "" {
			return strings.TrimSpace(tok), nil
		}
	}
	return "", status.Error(codes.Unauthenticated, "no token")
}

// Auth requires a valid doctor token on every method that is not open.
func Auth(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if IsOpen(info.FullMethod) {
			return next(ctx, req)
		}
		raw, err := bearerToken(ctx)
		if err != nil {
			return nil, err
		}
		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		return next(WithDoctorID(ctx, claims.DoctorID), req)
	}
}
