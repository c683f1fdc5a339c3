package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
)

// Finalize recomputes the participants of a bill from its accepted invitations.
// Only the creator may finalize. Running it again without invitation changes
// yields the same participants.
func (e *Engine) Finalize(ctx context.Context, actor, billID string) (*calculator.Finalization, error) {
	var fin *calculator.Finalization
	err := e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		bill, err := lockOwned(ctx, tx, billID, actor)
		if err != nil {
			return err
		}
		if err := requireStatus(bill, models.StatusDraft, models.StatusPendingResponses, models.StatusFinalized); err != nil {
			return err
		}

		fin, err = e.finalizeLocked(ctx, tx, bill, actor, fx)
		if err != nil {
			return err
		}

		for _, share := range fin.Shares {
			if share.IsCreator {
				continue
			}
			fx.notify(share.UserID, finalizedEvent(bill, share, false))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Bill finalized", "bill_id", billID, "user_id", actor,
		"participants", fin.ParticipantCount(), "creator_pays", fin.CreatorPays.StringFixed(calculator.MoneyPlaces))
	return fin, nil
}

// finalizeLocked replaces the participant set of a locked bill and marks it
// finalized. Users whose owed amount is unchanged keep their payment status.
func (e *Engine) finalizeLocked(ctx context.Context, tx storage.Tx, bill *models.Bill, actor string, fx *effects) (*calculator.Finalization, error) {
	invitations, err := tx.ListInvitations(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	proposals := make([]calculator.Proposal, 0, len(invitations))
	for _, inv := range invitations {
		proposals = append(proposals, calculator.Proposal{
			UserID:  inv.InvitedUserID,
			Amount:  inv.ProposedAmount,
			Outcome: outcomeOf(inv.Status),
		})
	}

	fin, err := calculator.Finalize(bill.TotalAmount, bill.CreatedBy, proposals)
	if err != nil {
		return nil, fmt.Errorf("bill %s: %w", bill.ID, err)
	}

	previous, err := tx.ListParticipants(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	prior := make(map[string]models.Participant, len(previous))
	for _, p := range previous {
		prior[p.UserID] = p
	}

	if err := tx.DeleteParticipants(ctx, bill.ID); err != nil {
		return nil, err
	}
	now := e.now().Unix()
	for _, share := range fin.Shares {
		p := &models.Participant{
			BillID:        bill.ID,
			UserID:        share.UserID,
			AmountOwed:    share.Amount,
			IsCreator:     share.IsCreator,
			PaymentStatus: models.PaymentPending,
			CreatedAt:     now,
		}
		if old, ok := prior[share.UserID]; ok && old.PaymentStatus == models.PaymentPaid && old.AmountOwed.Equal(share.Amount) {
			p.PaymentStatus = models.PaymentPaid
			p.PaidAt = old.PaidAt
		}
		if err := tx.InsertParticipant(ctx, p); err != nil {
			return nil, err
		}
	}

	if err := tx.MarkBillFinalized(ctx, bill.ID, now); err != nil {
		return nil, err
	}
	if err := e.logActivity(ctx, tx, bill.ID, actor, models.ActionFinalized,
		fmt.Sprintf("Finalized with %d participant(s), creator pays %s",
			fin.ParticipantCount(), fin.CreatorPays.StringFixed(calculator.MoneyPlaces))); err != nil {
		return nil, err
	}
	if bill.Status != models.StatusFinalized {
		fx.transition(models.StatusFinalized)
	}
	return fin, nil
}

func outcomeOf(s models.InvitationStatus) calculator.Outcome {
	switch s {
	case models.InvitationAccepted:
		return calculator.OutcomeAccepted
	case models.InvitationRejected:
		return calculator.OutcomeRejected
	default:
		return calculator.OutcomePending
	}
}

func finalizedEvent(bill *models.Bill, share calculator.Share, auto bool) notify.Event {
	return notify.Event{
		Type:    notify.EventBillFinalized,
		Title:   "Bill Finalized",
		Message: fmt.Sprintf("%q has been finalized. Your share is %s", bill.Title, share.Amount.StringFixed(calculator.MoneyPlaces)),
		Data: notify.Data{
			BillID:        bill.ID,
			BillTitle:     bill.Title,
			Status:        string(models.StatusFinalized),
			Amount:        notify.Amount(share.Amount),
			TotalAmount:   notify.Amount(bill.TotalAmount),
			AutoFinalized: auto,
		},
	}
}
