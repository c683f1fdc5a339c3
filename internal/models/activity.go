package models

// ActivityAction tags an activity log entry.
type ActivityAction string

const (
	ActionCreated     ActivityAction = "created"
	ActionInvitedUser ActivityAction = "invited_user"
	ActionAccepted    ActivityAction = "accepted"
	ActionRejected    ActivityAction = "rejected"
	ActionFinalized   ActivityAction = "finalized"
	ActionCancelled   ActivityAction = "cancelled"
	ActionPayment     ActivityAction = "payment"
	ActionPaid        ActivityAction = "paid"
)

// ActivityLogEntry is an append-only audit record. It is never updated or deleted.
type ActivityLogEntry struct {
	ID     int64
	BillID string

	// UserID is the acting user. Empty for system-driven entries without an owner.
	UserID string

	Action    ActivityAction
	Details   string
	CreatedAt int64
}
