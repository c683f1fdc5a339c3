package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/billing"
	"github.com/mmynk/billsplit/internal/middleware"
)

var errInternal = errors.New("internal server error")

// toConnectError maps engine errors to connect codes. Faults are logged here
// and reach the client only as a generic message.
func toConnectError(op string, err error) error {
	var verr *billing.ValidationError
	switch {
	case errors.As(err, &verr):
		return connect.NewError(connect.CodeInvalidArgument, verr)
	case errors.Is(err, billing.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, billing.ErrInvalidState), errors.Is(err, billing.ErrOvercommitted):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

// requireUser returns the authenticated user ID from the context.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}

func requireField(name, value string) error {
	if value == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s required", name))
	}
	return nil
}
