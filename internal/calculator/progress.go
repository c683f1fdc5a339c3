package calculator

import "github.com/shopspring/decimal"

// Payment is the minimal view of a participant needed to track payment progress.
type Payment struct {
	Amount decimal.Decimal
	Paid   bool
}

// Progress summarizes how much of a finalized bill has been paid.
type Progress struct {
	Participants int
	Paid         int
	Unpaid       int
	AmountPaid   decimal.Decimal
	Outstanding  decimal.Decimal
}

// Settled reports whether every participant has paid. A bill without
// participants is never settled.
func (p Progress) Settled() bool {
	return p.Participants > 0 && p.Unpaid == 0
}

// CalculateProgress aggregates participant payments.
func CalculateProgress(payments []Payment) Progress {
	progress := Progress{
		AmountPaid:  decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, p := range payments {
		progress.Participants++
		if p.Paid {
			progress.Paid++
			progress.AmountPaid = progress.AmountPaid.Add(p.Amount)
		} else {
			progress.Unpaid++
			progress.Outstanding = progress.Outstanding.Add(p.Amount)
		}
	}
	return progress
}
