package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/api"
	"github.com/mmynk/billsplit/internal/notify"
)

// NotificationService streams bill events to connected users.
type NotificationService struct {
	hub *notify.Hub
}

var _ api.NotificationServiceHandler = (*NotificationService)(nil)

func NewNotificationService(hub *notify.Hub) *NotificationService {
	return &NotificationService{hub: hub}
}

// Watch sends the caller's events until the client disconnects.
func (s *NotificationService) Watch(ctx context.Context, _ *connect.Request[api.Empty], stream *connect.ServerStream[notify.Event]) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}

	events, cancel := s.hub.Subscribe(userID)
	defer cancel()
	// Flush headers so the client sees the stream open before the first event.
	if err := stream.Send(nil); err != nil {
		return err
	}
	slog.Info("Notification stream opened", "user_id", userID)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Notification stream closed", "user_id", userID)
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(&ev); err != nil {
				slog.Debug("Notification stream send failed", "user_id", userID, "error", err)
				return err
			}
		}
	}
}
