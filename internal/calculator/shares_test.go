package calculator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name         string
		total        decimal.Decimal
		proposals    []Proposal
		wantErr      error
		wantCreator  string
		wantShares   int
		wantRejected string
		validateFunc func(t *testing.T, f *Finalization)
	}{
		{
			name:  "single accepted share",
			total: d("100"),
			proposals: []Proposal{
				{UserID: "userA", Amount: d("40"), Outcome: OutcomeAccepted},
			},
			wantCreator:  "60",
			wantShares:   2,
			wantRejected: "0",
			validateFunc: func(t *testing.T, f *Finalization) {
				if !f.Shares[0].IsCreator || f.Shares[0].UserID != "creator" {
					t.Errorf("first share = %+v, want creator", f.Shares[0])
				}
				if f.Shares[1].UserID != "userA" || !f.Shares[1].Amount.Equal(d("40")) {
					t.Errorf("second share = %+v, want userA owing 40", f.Shares[1])
				}
			},
		},
		{
			name:  "rejected amounts are informational",
			total: d("90"),
			proposals: []Proposal{
				{UserID: "userA", Amount: d("30"), Outcome: OutcomeAccepted},
				{UserID: "userB", Amount: d("30"), Outcome: OutcomeRejected},
				{UserID: "userC", Amount: d("12.5"), Outcome: OutcomeRejected},
			},
			wantCreator:  "60",
			wantShares:   2,
			wantRejected: "42.5",
		},
		{
			name:  "pending proposals are ignored",
			total: d("50"),
			proposals: []Proposal{
				{UserID: "userA", Amount: d("20"), Outcome: OutcomePending},
			},
			wantCreator:  "50",
			wantShares:   1,
			wantRejected: "0",
		},
		{
			name:  "residual keeps cents exact",
			total: d("100.00"),
			proposals: []Proposal{
				{UserID: "userA", Amount: d("33.33"), Outcome: OutcomeAccepted},
				{UserID: "userB", Amount: d("33.33"), Outcome: OutcomeAccepted},
			},
			wantCreator:  "33.34",
			wantShares:   3,
			wantRejected: "0",
		},
		{
			name:  "accepted shares may consume the whole total",
			total: d("10"),
			proposals: []Proposal{
				{UserID: "userA", Amount: d("10"), Outcome: OutcomeAccepted},
			},
			wantCreator:  "0",
			wantShares:   2,
			wantRejected: "0",
		},
		{
			name:  "overcommitted shares are rejected",
			total: d("10"),
			proposals: []Proposal{
				{UserID: "userA", Amount: d("8"), Outcome: OutcomeAccepted},
				{UserID: "userB", Amount: d("8"), Outcome: OutcomeAccepted},
			},
			wantErr: ErrOvercommitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Finalize(tt.total, "creator", tt.proposals)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Finalize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize() unexpected error: %v", err)
			}
			if !f.CreatorPays.Equal(d(tt.wantCreator)) {
				t.Errorf("CreatorPays = %s, want %s", f.CreatorPays, tt.wantCreator)
			}
			if f.ParticipantCount() != tt.wantShares {
				t.Errorf("ParticipantCount = %d, want %d", f.ParticipantCount(), tt.wantShares)
			}
			if f.AcceptedCount != tt.wantShares-1 {
				t.Errorf("AcceptedCount = %d, want %d", f.AcceptedCount, tt.wantShares-1)
			}
			if !f.RejectedAmount.Equal(d(tt.wantRejected)) {
				t.Errorf("RejectedAmount = %s, want %s", f.RejectedAmount, tt.wantRejected)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, f)
			}
		})
	}
}

func TestFinalizeRequiresCreator(t *testing.T) {
	if _, err := Finalize(d("10"), "", nil); err == nil {
		t.Fatal("expected error for missing creator")
	}
	_, err := Finalize(d("10"), "creator", []Proposal{{UserID: "creator", Amount: d("1"), Outcome: OutcomeAccepted}})
	if err == nil {
		t.Fatal("expected error when the creator holds an accepted proposal")
	}
}

// Every accept/reject assignment must conserve the total.
func TestFinalizeConservesTotal(t *testing.T) {
	amounts := []decimal.Decimal{d("10.01"), d("0.99"), d("23.45"), d("7")}
	total := d("61.73")

	for n := 1; n <= len(amounts); n++ {
		for mask := 0; mask < 1<<n; mask++ {
			t.Run(fmt.Sprintf("n=%d/mask=%b", n, mask), func(t *testing.T) {
				proposals := make([]Proposal, n)
				for i := 0; i < n; i++ {
					outcome := OutcomeRejected
					if mask&(1<<i) != 0 {
						outcome = OutcomeAccepted
					}
					proposals[i] = Proposal{UserID: fmt.Sprintf("user%d", i), Amount: amounts[i], Outcome: outcome}
				}

				f, err := Finalize(total, "creator", proposals)
				if err != nil {
					t.Fatalf("Finalize() unexpected error: %v", err)
				}

				sum := decimal.Zero
				for _, s := range f.Shares {
					sum = sum.Add(s.Amount)
				}
				if !sum.Equal(total) {
					t.Errorf("shares sum = %s, want %s", sum, total)
				}
			})
		}
	}
}

func TestCheckCommitment(t *testing.T) {
	if err := CheckCommitment(d("100"), []decimal.Decimal{d("40"), d("60")}); err != nil {
		t.Errorf("exact commitment should pass: %v", err)
	}
	if err := CheckCommitment(d("100"), nil); err != nil {
		t.Errorf("empty commitment should pass: %v", err)
	}
	err := CheckCommitment(d("100"), []decimal.Decimal{d("40"), d("60.01")})
	if !errors.Is(err, ErrOvercommitted) {
		t.Errorf("CheckCommitment() error = %v, want ErrOvercommitted", err)
	}
}

func TestRound(t *testing.T) {
	if got := Round(d("10.005")); !got.Equal(d("10.01")) {
		t.Errorf("Round(10.005) = %s, want 10.01", got)
	}
	if got := Sum(d("0.1"), d("0.2")); !got.Equal(d("0.3")) {
		t.Errorf("Sum(0.1, 0.2) = %s, want 0.3", got)
	}
}
