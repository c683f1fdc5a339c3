package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
)

// PaymentResult is the payment state of a bill after MarkPaid.
type PaymentResult struct {
	BillID      string
	UserID      string
	Status      models.BillStatus
	Progress    calculator.Progress
	AlreadyPaid bool
}

// MarkPaid records that a participant paid their share. Participants mark
// themselves; the creator may mark anyone. Once every participant has paid the
// bill becomes paid and a monthly bill's next due date moves one month ahead.
func (e *Engine) MarkPaid(ctx context.Context, actor, billID string, in MarkPaidInput) (*PaymentResult, error) {
	target := in.UserID
	if target == "" {
		target = actor
	}

	result := &PaymentResult{BillID: billID, UserID: target}
	err := e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		bill, err := tx.LockBill(ctx, billID)
		if err != nil {
			return notFound(err, "bill "+billID)
		}
		if target != actor && bill.CreatedBy != actor {
			return notFound(storage.ErrNotFound, "bill "+billID)
		}
		if bill.IsTemplate {
			return requireStatus(bill, models.StatusFinalized)
		}

		participant, err := tx.GetParticipant(ctx, billID, target)
		if err != nil {
			return notFound(err, "participant "+target)
		}
		result.Status = bill.Status

		if participant.PaymentStatus == models.PaymentPaid {
			result.AlreadyPaid = true
			result.Progress, err = progressOf(ctx, tx, billID)
			return err
		}
		if err := requireStatus(bill, models.StatusFinalized); err != nil {
			return err
		}

		if err := tx.MarkParticipantPaid(ctx, billID, target, e.now().Unix()); err != nil {
			return notFound(err, "participant "+target)
		}
		fx.payments++
		if err := e.logActivity(ctx, tx, billID, actor, models.ActionPayment,
			fmt.Sprintf("%s paid %s", target, participant.AmountOwed.StringFixed(calculator.MoneyPlaces))); err != nil {
			return err
		}

		result.Progress, err = progressOf(ctx, tx, billID)
		if err != nil {
			return err
		}
		if !result.Progress.Settled() {
			return nil
		}
		return e.settleLocked(ctx, tx, bill, result, fx)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Payment recorded", "bill_id", billID, "user_id", target,
		"unpaid", result.Progress.Unpaid, "status", result.Status)
	return result, nil
}

// settleLocked moves a fully paid bill to StatusPaid.
func (e *Engine) settleLocked(ctx context.Context, tx storage.Tx, bill *models.Bill, result *PaymentResult, fx *effects) error {
	if err := tx.UpdateBillStatus(ctx, bill.ID, models.StatusPaid); err != nil {
		return err
	}
	if bill.Kind == models.KindMonthly && bill.NextDueDate != nil {
		if err := tx.SetNextDueDate(ctx, bill.ID, calendar.AddMonthOptional(bill.NextDueDate)); err != nil {
			return err
		}
	}
	if err := e.logActivity(ctx, tx, bill.ID, bill.CreatedBy, models.ActionPaid, "All participants have paid"); err != nil {
		return err
	}
	fx.transition(models.StatusPaid)
	result.Status = models.StatusPaid

	participants, err := tx.ListParticipants(ctx, bill.ID)
	if err != nil {
		return err
	}
	for _, p := range participants {
		fx.notify(p.UserID, notify.Event{
			Type:    notify.EventBillStatusUpdate,
			Title:   "Bill Paid",
			Message: fmt.Sprintf("Everyone has paid %q", bill.Title),
			Data: notify.Data{
				BillID:      bill.ID,
				BillTitle:   bill.Title,
				Status:      string(models.StatusPaid),
				TotalAmount: notify.Amount(bill.TotalAmount),
			},
		})
	}
	return nil
}

func progressOf(ctx context.Context, q storage.Queries, billID string) (calculator.Progress, error) {
	participants, err := q.ListParticipants(ctx, billID)
	if err != nil {
		return calculator.Progress{}, err
	}
	return progressFrom(participants), nil
}

func progressFrom(participants []models.Participant) calculator.Progress {
	payments := make([]calculator.Payment, 0, len(participants))
	for _, p := range participants {
		payments = append(payments, calculator.Payment{
			Amount: p.AmountOwed,
			Paid:   p.PaymentStatus == models.PaymentPaid,
		})
	}
	return calculator.CalculateProgress(payments)
}
