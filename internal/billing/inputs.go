package billing

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

// ItemInput is one line item supplied with a new bill.
type ItemInput struct {
	Name        string `validate:"required,max=255"`
	Description string
	// Quantity defaults to 1 when zero.
	Quantity  int             `validate:"gte=0"`
	UnitPrice decimal.Decimal `validate:"gte=0"`
	// TotalPrice defaults to Quantity * UnitPrice when zero.
	TotalPrice decimal.Decimal `validate:"gte=0"`
}

// CreateBillInput is the client-supplied part of a new bill.
type CreateBillInput struct {
	Title       string          `validate:"required,max=255"`
	TotalAmount decimal.Decimal `validate:"gt=0"`
	BillDate    string          `validate:"required,datetime=2006-01-02"`
	DueDate     string          `validate:"omitempty,datetime=2006-01-02"`
	Notes       string
	Items       []ItemInput     `validate:"dive"`
	Kind        models.BillKind `validate:"omitempty,oneof=one_time monthly"`
	AutoInvite  bool
	IsTemplate  bool
}

// Invitee is one user offered a share of a bill.
type Invitee struct {
	UserID         string          `validate:"required"`
	ProposedAmount decimal.Decimal `validate:"gt=0"`
}

type InviteInput struct {
	Invitees []Invitee `validate:"required,min=1,unique=UserID,dive"`
}

// Response actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

type RespondInput struct {
	Action string `validate:"required,oneof=accept reject"`
}

// MarkPaidInput selects whose participation to mark. An empty UserID means the
// actor; only the creator may name someone else.
type MarkPaidInput struct {
	UserID string
}

type InstantiateInput struct {
	BillDate string `validate:"required,datetime=2006-01-02"`
	DueDate  string `validate:"omitempty,datetime=2006-01-02"`
	Notes    string
}

// roundAmounts rounds every amount to cents so validation sees what will be
// stored. Items are copied rather than modified in place.
func (in *CreateBillInput) roundAmounts() {
	in.TotalAmount = calculator.Round(in.TotalAmount)
	items := make([]ItemInput, len(in.Items))
	for i, item := range in.Items {
		item.UnitPrice = calculator.Round(item.UnitPrice)
		item.TotalPrice = calculator.Round(item.TotalPrice)
		items[i] = item
	}
	in.Items = items
}

func (in *InviteInput) roundAmounts() {
	invitees := make([]Invitee, len(in.Invitees))
	for i, inv := range in.Invitees {
		inv.ProposedAmount = calculator.Round(inv.ProposedAmount)
		invitees[i] = inv
	}
	in.Invitees = invitees
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (e *Engine) validate(in any) error {
	if err := e.validator.Struct(in); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
