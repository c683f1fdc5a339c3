package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
)

// Invite offers shares of a bill to users. Only the creator may invite.
//
// Repeat invitations replace the earlier proposal and reset it to pending.
// Pending and accepted proposals together may not exceed the bill total. A
// draft bill moves to pending_responses; a template only records the roster
// that auto-invite clones will copy, and nobody is notified.
func (e *Engine) Invite(ctx context.Context, actor, billID string, in InviteInput) (models.BillStatus, error) {
	in.roundAmounts()
	if err := e.validate(in); err != nil {
		return "", err
	}

	var status models.BillStatus
	err := e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		bill, err := lockOwned(ctx, tx, billID, actor)
		if err != nil {
			return err
		}
		if err := requireStatus(bill, models.StatusDraft, models.StatusPendingResponses, models.StatusTemplate); err != nil {
			return err
		}

		for _, inv := range in.Invitees {
			if inv.UserID == bill.CreatedBy {
				return invalid("the bill creator cannot be invited")
			}
		}
		proposed, err := proposedAfter(ctx, tx, billID, in.Invitees)
		if err != nil {
			return err
		}
		if err := calculator.CheckCommitment(bill.TotalAmount, proposed); err != nil {
			return err
		}

		now := e.now().Unix()
		for _, inv := range in.Invitees {
			if err := tx.UpsertInvitation(ctx, &models.Invitation{
				BillID:         billID,
				InvitedUserID:  inv.UserID,
				InvitedBy:      actor,
				ProposedAmount: inv.ProposedAmount,
				Status:         models.InvitationPending,
				CreatedAt:      now,
			}); err != nil {
				return err
			}
		}

		status = bill.Status
		if bill.Status == models.StatusDraft {
			if err := tx.UpdateBillStatus(ctx, billID, models.StatusPendingResponses); err != nil {
				return err
			}
			status = models.StatusPendingResponses
			fx.transition(status)
		}

		if err := e.logActivity(ctx, tx, billID, actor, models.ActionInvitedUser,
			fmt.Sprintf("Invited %d user(s)", len(in.Invitees))); err != nil {
			return err
		}

		if bill.IsTemplate {
			return nil
		}
		inviter := displayName(ctx, tx, actor)
		total := bill.TotalAmount
		for _, inv := range in.Invitees {
			fx.notify(inv.UserID, notify.Event{
				Type:    notify.EventBillInvitation,
				Title:   "New Bill Invitation",
				Message: fmt.Sprintf("%s invited you to split %q", inviter, bill.Title),
				Data: notify.Data{
					BillID:         billID,
					BillTitle:      bill.Title,
					ProposedAmount: notify.Amount(inv.ProposedAmount),
					TotalAmount:    notify.Amount(total),
					InviterName:    inviter,
				},
			})
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Users invited", "bill_id", billID, "user_id", actor, "count", len(in.Invitees), "status", status)
	return status, nil
}

// proposedAfter returns the pending and accepted amounts on the bill as they
// will be once the invitees are upserted.
func proposedAfter(ctx context.Context, q storage.Queries, billID string, invitees []Invitee) ([]decimal.Decimal, error) {
	existing, err := q.ListInvitations(ctx, billID)
	if err != nil {
		return nil, err
	}
	amounts := make(map[string]decimal.Decimal, len(existing)+len(invitees))
	for _, inv := range existing {
		// Nobody owes a rejected share.
		if inv.Status == models.InvitationRejected {
			continue
		}
		amounts[inv.InvitedUserID] = inv.ProposedAmount
	}
	for _, inv := range invitees {
		amounts[inv.UserID] = inv.ProposedAmount
	}
	out := make([]decimal.Decimal, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, a)
	}
	return out, nil
}
