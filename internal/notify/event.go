// Package notify carries bill events to connected users.
//
// Delivery is best effort and at most once: the billing engines publish after
// their transaction commits and never look at the outcome.
package notify

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names the kind of a bill event.
type EventType string

const (
	EventBillInvitation   EventType = "bill_invitation"
	EventBillResponse     EventType = "bill_response"
	EventBillStatusUpdate EventType = "bill_status_update"
	EventBillFinalized    EventType = "bill_finalized"
)

// Event is a single notification addressed to one user.
type Event struct {
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      Data      `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Data holds the bill fields an event refers to. Which fields are set depends on
// the event type.
type Data struct {
	BillID         string           `json:"billId"`
	BillTitle      string           `json:"billTitle"`
	Status         string           `json:"status,omitempty"`
	Action         string           `json:"action,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	ProposedAmount *decimal.Decimal `json:"proposedAmount,omitempty"`
	TotalAmount    *decimal.Decimal `json:"totalAmount,omitempty"`
	InviterName    string           `json:"inviterName,omitempty"`
	RespondingUser string           `json:"respondingUser,omitempty"`
	AutoFinalized  bool             `json:"autoFinalized,omitempty"`
}

// Sink receives events for delivery. Notify reports whether the event reached
// at least one live subscriber.
type Sink interface {
	Notify(userID string, ev Event) bool
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(string, Event) bool { return false }

// Amount returns a pointer to d, for the optional amount fields of Data.
func Amount(d decimal.Decimal) *decimal.Decimal {
	return &d
}
