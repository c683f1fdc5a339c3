package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
)

// RespondResult is the bill state after an invitation response.
type RespondResult struct {
	BillID        string
	Status        models.BillStatus
	AutoFinalized bool
}

// Resolution is the outcome of checking whether a bill's invitations are all
// resolved.
type Resolution struct {
	Status  models.BillStatus
	Updated bool

	// Finalization is set when the bill was auto-finalized.
	Finalization *calculator.Finalization
}

// Respond records actor's answer to their pending invitation. When it is the
// last outstanding invitation the bill is finalized (at least one acceptance)
// or cancelled (none) in the same transaction.
func (e *Engine) Respond(ctx context.Context, actor, billID string, in RespondInput) (*RespondResult, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}
	status := models.InvitationAccepted
	action := models.ActionAccepted
	if in.Action == ActionReject {
		status = models.InvitationRejected
		action = models.ActionRejected
	}

	var result *RespondResult
	err := e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		bill, err := tx.LockBill(ctx, billID)
		if err != nil {
			return notFound(err, "bill "+billID)
		}
		invitation, err := tx.GetInvitation(ctx, billID, actor)
		if err != nil {
			return notFound(err, "pending invitation")
		}
		if invitation.Status != models.InvitationPending {
			return fmt.Errorf("invitation already responded to: %w", ErrNotFound)
		}
		if err := requireStatus(bill, models.StatusPendingResponses); err != nil {
			return err
		}
		if err := tx.RespondToInvitation(ctx, billID, actor, status, e.now().Unix()); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("invitation already responded to: %w", ErrNotFound)
			}
			return err
		}
		fx.responses = append(fx.responses, in.Action)

		if err := e.logActivity(ctx, tx, billID, actor, action,
			fmt.Sprintf("%s invitation for %s", capitalize(string(status)),
				invitation.ProposedAmount.StringFixed(calculator.MoneyPlaces))); err != nil {
			return err
		}

		res, err := e.resolveLocked(ctx, tx, bill, fx)
		if err != nil {
			return err
		}
		result = &RespondResult{
			BillID:        billID,
			Status:        res.Status,
			AutoFinalized: res.Finalization != nil,
		}

		responder := displayName(ctx, tx, actor)
		fx.notify(actor, notify.Event{
			Type:    notify.EventBillStatusUpdate,
			Title:   "Response Recorded",
			Message: fmt.Sprintf("You %s the invitation for %q", status, bill.Title),
			Data: notify.Data{
				BillID:        billID,
				BillTitle:     bill.Title,
				Status:        string(res.Status),
				Action:        in.Action,
				AutoFinalized: result.AutoFinalized,
			},
		})
		fx.notify(bill.CreatedBy, creatorEvent(bill, res, responder, in.Action, invitation))
		if res.Finalization != nil {
			for _, share := range res.Finalization.Shares {
				if share.IsCreator || share.UserID == actor {
					continue
				}
				fx.notify(share.UserID, finalizedEvent(bill, share, true))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Invitation response recorded", "bill_id", billID, "user_id", actor,
		"action", in.Action, "status", result.Status, "auto_finalized", result.AutoFinalized)
	return result, nil
}

// CheckStatus runs the auto-resolution routine for a bill, as if its last
// invitation had just been answered.
func (e *Engine) CheckStatus(ctx context.Context, billID string) (*Resolution, error) {
	var res *Resolution
	err := e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		bill, err := tx.LockBill(ctx, billID)
		if err != nil {
			return notFound(err, "bill "+billID)
		}
		res, err = e.resolveLocked(ctx, tx, bill, fx)
		if err != nil || !res.Updated {
			return err
		}
		fx.notify(bill.CreatedBy, creatorEvent(bill, res, "", "", nil))
		if res.Finalization != nil {
			for _, share := range res.Finalization.Shares {
				if !share.IsCreator {
					fx.notify(share.UserID, finalizedEvent(bill, share, true))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Updated {
		slog.Info("Bill status resolved", "bill_id", billID, "status", res.Status)
	}
	return res, nil
}

// resolveLocked applies the automatic transition of a pending_responses bill
// once no invitation is pending. The creator is recorded as the actor.
func (e *Engine) resolveLocked(ctx context.Context, tx storage.Tx, bill *models.Bill, fx *effects) (*Resolution, error) {
	res := &Resolution{Status: bill.Status}
	if bill.Status != models.StatusPendingResponses {
		return res, nil
	}
	counts, err := tx.CountInvitations(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	if !counts.AllResolved() {
		return res, nil
	}

	if counts.Accepted > 0 {
		fin, err := e.finalizeLocked(ctx, tx, bill, bill.CreatedBy, fx)
		if err != nil {
			return nil, err
		}
		res.Status = models.StatusFinalized
		res.Updated = true
		res.Finalization = fin
		return res, nil
	}

	if err := tx.UpdateBillStatus(ctx, bill.ID, models.StatusCancelled); err != nil {
		return nil, err
	}
	if err := e.logActivity(ctx, tx, bill.ID, bill.CreatedBy, models.ActionCancelled,
		fmt.Sprintf("Cancelled: all %d invitation(s) rejected", counts.Total)); err != nil {
		return nil, err
	}
	fx.transition(models.StatusCancelled)
	res.Status = models.StatusCancelled
	res.Updated = true
	return res, nil
}

// creatorEvent tells the creator about a response or the transition it caused.
func creatorEvent(bill *models.Bill, res *Resolution, responder, action string, inv *models.Invitation) notify.Event {
	data := notify.Data{
		BillID:         bill.ID,
		BillTitle:      bill.Title,
		Status:         string(res.Status),
		Action:         action,
		RespondingUser: responder,
		AutoFinalized:  res.Finalization != nil,
	}
	if inv != nil {
		data.ProposedAmount = notify.Amount(inv.ProposedAmount)
	}

	switch {
	case res.Finalization != nil:
		data.Amount = notify.Amount(res.Finalization.CreatorPays)
		return notify.Event{
			Type:    notify.EventBillFinalized,
			Title:   "Bill Finalized",
			Message: fmt.Sprintf("All invitations for %q are resolved. You pay %s", bill.Title, res.Finalization.CreatorPays.StringFixed(calculator.MoneyPlaces)),
			Data:    data,
		}
	case res.Updated:
		return notify.Event{
			Type:    notify.EventBillStatusUpdate,
			Title:   "Bill Cancelled",
			Message: fmt.Sprintf("Every invitation for %q was rejected", bill.Title),
			Data:    data,
		}
	default:
		return notify.Event{
			Type:    notify.EventBillResponse,
			Title:   "Invitation Response",
			Message: fmt.Sprintf("%s %sed your invitation for %q", responder, action, bill.Title),
			Data:    data,
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
