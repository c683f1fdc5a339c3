package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
)

// errSkipSource marks a sweep source that no longer qualifies.
var errSkipSource = errors.New("recurrence source skipped")

// SweepResult summarizes one recurrence sweep.
type SweepResult struct {
	Processed int
	Skipped   int
	Failed    int
	Bills     []*models.Bill
}

// occurrence describes the bill to clone out of a template.
type occurrence struct {
	billDate time.Time
	dueDate  *time.Time
	nextDue  *time.Time
	notes    string
	kind     models.BillKind
	sourceID string
}

// InstantiateFromTemplate creates a new bill from one of actor's templates.
// Items are copied by value. With auto-invite the template's invitations are
// copied as pending and the bill starts in pending_responses.
func (e *Engine) InstantiateFromTemplate(ctx context.Context, actor, templateID string, in InstantiateInput) (*CreatedBill, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}
	billDate, err := calendar.Parse(in.BillDate)
	if err != nil {
		return nil, invalid("bill date: %v", err)
	}
	dueDate, err := calendar.ParseOptional(in.DueDate)
	if err != nil {
		return nil, invalid("due date: %v", err)
	}

	var created *CreatedBill
	err = e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		template, err := tx.GetBill(ctx, templateID)
		if err != nil {
			return notFound(err, "template "+templateID)
		}
		if !template.IsTemplate || template.CreatedBy != actor {
			return notFound(storage.ErrNotFound, "template "+templateID)
		}

		occ := occurrence{
			billDate: billDate,
			dueDate:  dueDate,
			notes:    in.Notes,
			kind:     template.Kind,
		}
		if occ.notes == "" {
			occ.notes = template.Notes
		}
		if template.Kind == models.KindMonthly {
			occ.nextDue = calendar.AddMonthOptional(dueDate)
		}
		created, err = e.spawnLocked(ctx, tx, template, occ, fx)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Bill created from template", "bill_id", created.Bill.ID, "template_id", templateID,
		"user_id", actor, "status", created.Bill.Status)
	return created, nil
}

// SweepDueRecurring spawns the next occurrence of every paid monthly bill due
// on or before asOf. Each source is handled in its own transaction and a source
// that already has a successor is skipped, so repeated sweeps are harmless.
// A failing source is logged and counted without stopping the sweep.
func (e *Engine) SweepDueRecurring(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	sources, err := e.store.ListDueRecurring(ctx, calendar.Day(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to list due recurring bills: %w", err)
	}

	result := &SweepResult{}
	for i := range sources {
		src := &sources[i]
		var created *CreatedBill
		err := e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
			has, err := tx.HasSuccessor(ctx, src.ID)
			if err != nil {
				return err
			}
			if has {
				return errSkipSource
			}
			template, err := tx.GetBill(ctx, src.ParentBillID)
			if errors.Is(err, storage.ErrNotFound) {
				return errSkipSource
			}
			if err != nil {
				return err
			}
			if !template.IsTemplate {
				return errSkipSource
			}

			due := calendar.AddMonthOptional(src.DueDate)
			created, err = e.spawnLocked(ctx, tx, template, occurrence{
				billDate: calendar.AddMonth(src.BillDate),
				dueDate:  due,
				nextDue:  calendar.AddMonthOptional(due),
				notes:    template.Notes,
				kind:     models.KindMonthly,
				sourceID: src.ID,
			}, fx)
			if err != nil {
				return err
			}
			fx.spawned++
			return nil
		})

		switch {
		case errors.Is(err, errSkipSource):
			result.Skipped++
		case err != nil:
			result.Failed++
			slog.Error("Failed to spawn recurring bill", "bill_id", src.ID, "error", err)
		default:
			result.Processed++
			result.Bills = append(result.Bills, created.Bill)
		}
	}

	slog.Info("Recurring sweep complete", "as_of", calendar.Format(asOf),
		"processed", result.Processed, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// spawnLocked clones template into a new bill described by occ.
func (e *Engine) spawnLocked(ctx context.Context, tx storage.Tx, template *models.Bill, occ occurrence, fx *effects) (*CreatedBill, error) {
	bill := &models.Bill{
		Code:               e.codes.NextCode(),
		CreatedBy:          template.CreatedBy,
		Title:              template.Title,
		TotalAmount:        template.TotalAmount,
		BillDate:           occ.billDate,
		DueDate:            occ.dueDate,
		Kind:               occ.kind,
		Status:             models.StatusDraft,
		NextDueDate:        occ.nextDue,
		AutoInvite:         template.AutoInvite,
		ParentBillID:       template.ID,
		RecurrenceSourceID: occ.sourceID,
		Notes:              occ.notes,
		CreatedAt:          e.now().Unix(),
	}

	var invitations []models.Invitation
	if template.AutoInvite {
		roster, err := tx.ListInvitations(ctx, template.ID)
		if err != nil {
			return nil, err
		}
		invitations = roster
	}
	if len(invitations) > 0 {
		bill.Status = models.StatusPendingResponses
	}

	if err := tx.CreateBill(ctx, bill); err != nil {
		return nil, err
	}

	templateItems, err := tx.ListItems(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	items := make([]models.BillItem, len(templateItems))
	for i, item := range templateItems {
		item.ID = ""
		item.BillID = bill.ID
		items[i] = item
	}
	if err := tx.AddItems(ctx, bill.ID, items); err != nil {
		return nil, err
	}

	copied := make([]models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		clone := models.Invitation{
			BillID:         bill.ID,
			InvitedUserID:  inv.InvitedUserID,
			InvitedBy:      inv.InvitedBy,
			ProposedAmount: inv.ProposedAmount,
			Status:         models.InvitationPending,
			CreatedAt:      bill.CreatedAt,
		}
		if err := tx.UpsertInvitation(ctx, &clone); err != nil {
			return nil, err
		}
		copied = append(copied, clone)
	}

	if err := e.logActivity(ctx, tx, bill.ID, template.CreatedBy, models.ActionCreated,
		fmt.Sprintf("Created bill from template: %s", template.Title)); err != nil {
		return nil, err
	}
	fx.created = append(fx.created, createdKind(bill))
	if bill.Status == models.StatusPendingResponses {
		fx.transition(bill.Status)
	}

	if len(copied) > 0 {
		inviter := displayName(ctx, tx, template.CreatedBy)
		for _, inv := range copied {
			fx.notify(inv.InvitedUserID, notify.Event{
				Type:    notify.EventBillInvitation,
				Title:   "New Bill Invitation",
				Message: fmt.Sprintf("%s invited you to split %q", inviter, bill.Title),
				Data: notify.Data{
					BillID:         bill.ID,
					BillTitle:      bill.Title,
					ProposedAmount: notify.Amount(inv.ProposedAmount),
					TotalAmount:    notify.Amount(bill.TotalAmount),
					InviterName:    inviter,
				},
			})
		}
	}
	return &CreatedBill{Bill: bill, Items: items, Invitations: copied}, nil
}
