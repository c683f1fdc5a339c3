package billing

import (
	"context"
	"errors"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// BillDetails is the full aggregate of one bill.
type BillDetails struct {
	Bill         *models.Bill
	Items        []models.BillItem
	Invitations  []models.Invitation
	Participants []models.Participant
	Activity     []models.ActivityLogEntry
	Progress     calculator.Progress
}

// StatusView is a bill as seen by one user while invitations are outstanding.
type StatusView struct {
	Bill   *models.Bill
	Counts models.InvitationCounts

	// MyInvitation is the caller's invitation, nil if they were not invited.
	MyInvitation *models.Invitation

	// Invitations lists every invitation, only when the caller is the creator.
	Invitations []models.Invitation
}

// GetBillDetails loads a bill with everything it owns.
func (e *Engine) GetBillDetails(ctx context.Context, billID string) (*BillDetails, error) {
	bill, err := e.store.GetBill(ctx, billID)
	if err != nil {
		return nil, notFound(err, "bill "+billID)
	}

	d := &BillDetails{Bill: bill}
	if d.Items, err = e.store.ListItems(ctx, billID); err != nil {
		return nil, err
	}
	if d.Invitations, err = e.store.ListInvitations(ctx, billID); err != nil {
		return nil, err
	}
	if d.Participants, err = e.store.ListParticipants(ctx, billID); err != nil {
		return nil, err
	}
	if d.Activity, err = e.store.ListActivity(ctx, billID); err != nil {
		return nil, err
	}
	d.Progress = progressFrom(d.Participants)
	return d, nil
}

func (e *Engine) GetBillByCode(ctx context.Context, code string) (*models.Bill, error) {
	bill, err := e.store.GetBillByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "bill "+code)
	}
	return bill, nil
}

// GetBillStatus returns the response state of a bill for actor.
func (e *Engine) GetBillStatus(ctx context.Context, actor, billID string) (*StatusView, error) {
	bill, err := e.store.GetBill(ctx, billID)
	if err != nil {
		return nil, notFound(err, "bill "+billID)
	}
	view := &StatusView{Bill: bill}
	if view.Counts, err = e.store.CountInvitations(ctx, billID); err != nil {
		return nil, err
	}

	inv, err := e.store.GetInvitation(ctx, billID, actor)
	switch {
	case err == nil:
		view.MyInvitation = inv
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	if bill.CreatedBy == actor {
		if view.Invitations, err = e.store.ListInvitations(ctx, billID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (e *Engine) ListCreated(ctx context.Context, actor string) ([]models.BillSummary, error) {
	return e.store.ListBillsByCreator(ctx, actor)
}

func (e *Engine) ListInvited(ctx context.Context, actor string) ([]models.InvitedBill, error) {
	return e.store.ListInvitedBills(ctx, actor)
}

func (e *Engine) ListParticipating(ctx context.Context, actor string) ([]models.ParticipatingBill, error) {
	return e.store.ListParticipatingBills(ctx, actor)
}

func (e *Engine) ListTemplates(ctx context.Context, actor string) ([]models.Bill, error) {
	return e.store.ListTemplates(ctx, actor)
}

func (e *Engine) ListMonthly(ctx context.Context, actor string) ([]models.MonthlyBill, error) {
	return e.store.ListMonthlyBills(ctx, actor)
}
