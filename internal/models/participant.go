package models

import "github.com/shopspring/decimal"

// PaymentStatus tracks whether a participant has paid their share.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Participant is a finalized obligation of one user to pay a fixed amount on one bill.
type Participant struct {
	ID         string
	BillID     string
	UserID     string
	AmountOwed decimal.Decimal

	// IsCreator marks the bill creator, whose amount is the residual of the total.
	IsCreator bool

	PaymentStatus PaymentStatus

	// PaidAt is the Unix timestamp of payment, 0 while unpaid.
	PaidAt int64

	CreatedAt int64
}
