package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillKind is the recurrence kind of a bill.
type BillKind string

const (
	KindOneTime BillKind = "one_time"
	KindMonthly BillKind = "monthly"
)

// BillStatus is the lifecycle status of a bill.
type BillStatus string

const (
	StatusTemplate         BillStatus = "template"
	StatusDraft            BillStatus = "draft"
	StatusPendingResponses BillStatus = "pending_responses"
	StatusFinalized        BillStatus = "finalized"
	StatusCancelled        BillStatus = "cancelled"
	StatusPaid             BillStatus = "paid"
)

// Terminal reports whether no further lifecycle transitions are possible.
func (s BillStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusPaid
}

// Bill represents a shared expense moving through the split lifecycle.
type Bill struct {
	// ID is the surrogate identifier (UUID format).
	ID string

	// Code is the human-shareable unique code, e.g. "BILL-1A2B3C4D5E".
	Code string

	// CreatedBy is the user ID of the creator. The creator is always a participant
	// once the bill is finalized.
	CreatedBy string

	Title string

	// TotalAmount is fixed at creation. Invitations and finalization only change
	// how it is attributed, never the amount itself.
	TotalAmount decimal.Decimal

	BillDate time.Time
	DueDate  *time.Time

	Kind   BillKind
	Status BillStatus

	// NextDueDate is only set for monthly bills.
	NextDueDate *time.Time

	IsTemplate bool

	// AutoInvite makes clones of a template start with the template's invitations.
	AutoInvite bool

	// ParentBillID references the template this bill was cloned from.
	ParentBillID string

	// RecurrenceSourceID references the paid bill the recurrence sweep spawned this
	// bill from. A source has at most one successor.
	RecurrenceSourceID string

	Notes string

	// FinalizedAt is the Unix timestamp of the last finalization, 0 if never finalized.
	FinalizedAt int64

	CreatedAt int64
	UpdatedAt int64
}

// BillItem is a single line item on a bill.
type BillItem struct {
	ID          string
	BillID      string
	Name        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// BillSummary is a bill together with its invitation counts, as listed for its creator.
type BillSummary struct {
	Bill
	TotalInvitations    int
	AcceptedInvitations int
	RejectedInvitations int
	PendingInvitations  int
}

// InvitedBill is a bill seen from an invitee with a pending invitation.
type InvitedBill struct {
	Bill
	InvitationStatus InvitationStatus
	ProposedAmount   decimal.Decimal
	InvitedAt        int64
}

// ParticipatingBill is a bill seen from one of its participants.
type ParticipatingBill struct {
	Bill
	AmountOwed    decimal.Decimal
	IsCreator     bool
	PaymentStatus PaymentStatus
	PaidAt        int64
}

// MonthlyBill is a monthly bill seen from its creator or one of its participants.
// AmountOwed and PaymentStatus are empty when the user is not a participant.
type MonthlyBill struct {
	Bill
	Role          string
	AmountOwed    decimal.NullDecimal
	PaymentStatus PaymentStatus
}
