package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// CreatedBill is a newly persisted bill with its items.
type CreatedBill struct {
	Bill        *models.Bill
	Items       []models.BillItem
	Invitations []models.Invitation
}

// CreateBill validates in and persists a new bill owned by actor.
// Templates start in StatusTemplate, everything else in StatusDraft.
func (e *Engine) CreateBill(ctx context.Context, actor string, in CreateBillInput) (*CreatedBill, error) {
	if actor == "" {
		return nil, invalid("creator is required")
	}
	in.roundAmounts()
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

	kind := in.Kind
	if kind == "" {
		kind = models.KindOneTime
	}
	status := models.StatusDraft
	if in.IsTemplate {
		status = models.StatusTemplate
	}

	bill := &models.Bill{
		Code:        e.codes.NextCode(),
		CreatedBy:   actor,
		Title:       in.Title,
		TotalAmount: calculator.Round(in.TotalAmount),
		BillDate:    billDate,
		DueDate:     dueDate,
		Kind:        kind,
		Status:      status,
		IsTemplate:  in.IsTemplate,
		AutoInvite:  in.AutoInvite,
		Notes:       in.Notes,
		CreatedAt:   e.now().Unix(),
	}
	if kind == models.KindMonthly {
		bill.NextDueDate = calendar.AddMonthOptional(dueDate)
	}
	items := buildItems(in.Items)

	details := "Bill created"
	if bill.IsTemplate {
		details = "Template created"
	}
	err = e.inTx(ctx, func(tx storage.Tx, fx *effects) error {
		if err := tx.CreateBill(ctx, bill); err != nil {
			return err
		}
		if err := tx.AddItems(ctx, bill.ID, items); err != nil {
			return err
		}
		if err := e.logActivity(ctx, tx, bill.ID, actor, models.ActionCreated, details); err != nil {
			return err
		}
		fx.created = append(fx.created, createdKind(bill))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	slog.Info("Bill created", "bill_id", bill.ID, "code", bill.Code, "user_id", actor, "status", bill.Status)
	return &CreatedBill{Bill: bill, Items: items}, nil
}

func buildItems(inputs []ItemInput) []models.BillItem {
	items := make([]models.BillItem, 0, len(inputs))
	for _, in := range inputs {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		unit := calculator.Round(in.UnitPrice)
		total := calculator.Round(in.TotalPrice)
		if total.IsZero() {
			total = calculator.Round(unit.Mul(decimal.NewFromInt(int64(qty))))
		}
		items = append(items, models.BillItem{
			Name:        in.Name,
			Description: in.Description,
			Quantity:    qty,
			UnitPrice:   unit,
			TotalPrice:  total,
		})
	}
	return items
}

// createdKind is the metrics label for a new bill.
func createdKind(b *models.Bill) string {
	switch {
	case b.IsTemplate:
		return "template"
	case b.RecurrenceSourceID != "":
		return "recurring"
	default:
		return string(b.Kind)
	}
}
