package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
)

func (h *Handler) ListNotifications(ctx context.Context, req *pb.ListNotificationsRequest) (*pb.ListNotificationsResponse, error) {
	ns, err := h.store.ListNotifications(ctx, uid(ctx), req.UnreadOnly)
	if err != nil {
		return nil, h.toStatus("list notifications", err)
	}
	out := make([]*pb.Notification, len(ns))
	for i, n := range ns {
		out[i] = notificationToProto(n)
	}
	return &pb.ListNotificationsResponse{Notifications: out}, nil
}

func (h *Handler) MarkNotificationRead(ctx context.Context, req *pb.MarkNotificationReadRequest) (*pb.Empty, error) {
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := h.store.MarkNotificationRead(ctx, req.Id, uid(ctx)); err != nil {
		return nil, h.toStatus("mark notification", err)
	}
	return &pb.Empty{}, nil
}
