package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/api"
	"github.com/mmynk/billsplit/internal/billing"
	"github.com/mmynk/billsplit/internal/calendar"
)

// RecurrenceService implements the Connect RecurrenceService.
type RecurrenceService struct {
	engine *billing.Engine
	now    func() time.Time
}

var _ api.RecurrenceServiceHandler = (*RecurrenceService)(nil)

func NewRecurrenceService(engine *billing.Engine) *RecurrenceService {
	return &RecurrenceService{engine: engine, now: time.Now}
}

// InstantiateTemplate creates a bill from one of the caller's templates.
func (s *RecurrenceService) InstantiateTemplate(ctx context.Context, req *connect.Request[api.InstantiateTemplateRequest]) (*connect.Response[api.InstantiateTemplateResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("template_id", req.Msg.TemplateID); err != nil {
		return nil, err
	}

	created, err := s.engine.InstantiateFromTemplate(ctx, userID, req.Msg.TemplateID, billing.InstantiateInput{
		BillDate: req.Msg.BillDate,
		DueDate:  req.Msg.DueDate,
		Notes:    req.Msg.Notes,
	})
	if err != nil {
		return nil, toConnectError("InstantiateTemplate", err)
	}

	return connect.NewResponse(&api.InstantiateTemplateResponse{
		Bill:        billToAPI(created.Bill),
		Items:       itemsToAPI(created.Items),
		Invitations: invitationsToAPI(created.Invitations),
	}), nil
}

// SweepRecurring spawns the next occurrence of every due monthly bill.
func (s *RecurrenceService) SweepRecurring(ctx context.Context, req *connect.Request[api.SweepRecurringRequest]) (*connect.Response[api.SweepRecurringResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	asOf := s.now()
	if req.Msg.AsOf != "" {
		parsed, err := calendar.Parse(req.Msg.AsOf)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("as_of: %w", err))
		}
		asOf = parsed
	}

	res, err := s.engine.SweepDueRecurring(ctx, asOf)
	if err != nil {
		return nil, toConnectError("SweepRecurring", err)
	}

	ids := make([]string, len(res.Bills))
	for i, b := range res.Bills {
		ids[i] = b.ID
	}
	return connect.NewResponse(&api.SweepRecurringResponse{
		ProcessedCount: res.Processed,
		SkippedCount:   res.Skipped,
		FailedCount:    res.Failed,
		BillIDs:        ids,
	}), nil
}
