package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are rounded to.
const MoneyPlaces = 2

// ErrOvercommitted is returned when accepted shares add up to more than the bill total.
var ErrOvercommitted = errors.New("accepted shares exceed the bill total")

// Outcome is the resolution of a single proposed share.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeAccepted
	OutcomeRejected
)

// Proposal is one share proposed to a user through an invitation.
type Proposal struct {
	UserID  string
	Amount  decimal.Decimal
	Outcome Outcome
}

// Share is the amount one user owes after finalization.
type Share struct {
	UserID    string
	Amount    decimal.Decimal
	IsCreator bool
}

// Finalization is the result of resolving a bill's proposals into owed shares.
type Finalization struct {
	Total decimal.Decimal

	// Shares holds the creator first, then every accepted proposal in input order.
	Shares []Share

	// CreatorPays is the residual: total minus everything accepted.
	CreatorPays decimal.Decimal

	AcceptedCount int

	// RejectedAmount is informational only; nobody owes it.
	RejectedAmount decimal.Decimal
}

// ParticipantCount is the number of participants, creator included.
func (f *Finalization) ParticipantCount() int {
	return len(f.Shares)
}

// Round rounds an amount to MoneyPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}

// Finalize computes the participant shares for a bill.
//
// Every accepted proposal becomes a share of exactly its proposed amount and the
// creator owes the residual, so the shares always sum to total. Pending proposals
// are ignored. The residual may not go negative.
func Finalize(total decimal.Decimal, creatorID string, proposals []Proposal) (*Finalization, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("creator is required")
	}

	accepted := decimal.Zero
	rejected := decimal.Zero
	shares := []Share{{UserID: creatorID, IsCreator: true}}
	for _, p := range proposals {
		switch p.Outcome {
		case OutcomeAccepted:
			if p.UserID == creatorID {
				return nil, fmt.Errorf("creator %s cannot hold an accepted proposal", creatorID)
			}
			accepted = accepted.Add(p.Amount)
			shares = append(shares, Share{UserID: p.UserID, Amount: p.Amount})
		case OutcomeRejected:
			rejected = rejected.Add(p.Amount)
		}
	}

	residual := total.Sub(accepted)
	if residual.IsNegative() {
		return nil, fmt.Errorf("%w: accepted %s, total %s", ErrOvercommitted, accepted.StringFixed(MoneyPlaces), total.StringFixed(MoneyPlaces))
	}
	shares[0].Amount = residual

	return &Finalization{
		Total:          total,
		Shares:         shares,
		CreatorPays:    residual,
		AcceptedCount:  len(shares) - 1,
		RejectedAmount: rejected,
	}, nil
}

// CheckCommitment verifies that the proposed amounts fit into total.
func CheckCommitment(total decimal.Decimal, proposed []decimal.Decimal) error {
	committed := Sum(proposed...)
	if committed.GreaterThan(total) {
		return fmt.Errorf("%w: proposed %s, total %s", ErrOvercommitted, committed.StringFixed(MoneyPlaces), total.StringFixed(MoneyPlaces))
	}
	return nil
}
