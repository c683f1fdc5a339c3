package models

import "github.com/shopspring/decimal"

// InvitationStatus is the response state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Invitation is a proposed share of a bill offered to one user.
// There is at most one invitation per (BillID, InvitedUserID).
type Invitation struct {
	ID             string
	BillID         string
	InvitedUserID  string
	InvitedBy      string
	ProposedAmount decimal.Decimal
	Status         InvitationStatus

	// RespondedAt is the Unix timestamp of the first response, 0 while never responded.
	RespondedAt int64

	CreatedAt int64
}

// InvitationCounts aggregates the invitation statuses of a single bill.
type InvitationCounts struct {
	Total    int
	Accepted int
	Rejected int
	Pending  int
}

// Responded is the number of invitations no longer pending.
func (c InvitationCounts) Responded() int {
	return c.Total - c.Pending
}

// AllResolved reports whether at least one invitation exists and none is pending.
func (c InvitationCounts) AllResolved() bool {
	return c.Total > 0 && c.Pending == 0
}
