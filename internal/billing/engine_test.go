package billing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
)

const creator = "creator"

// recordingSink keeps every event it is handed.
type recordingSink struct {
	mu     sync.Mutex
	events map[string][]notify.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[string][]notify.Event)}
}

func (r *recordingSink) Notify(userID string, ev notify.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[userID] = append(r.events[userID], ev)
	return true
}

func (r *recordingSink) For(userID string) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events[userID]...)
}

func (r *recordingSink) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evs := range r.events {
		n += len(evs)
	}
	return n
}

// EngineTestSuite runs the engine against a real SQLite file.
type EngineTestSuite struct {
	suite.Suite
	store  *sqlite.SQLiteStore
	sink   *recordingSink
	engine *Engine
	now    time.Time
}

func (s *EngineTestSuite) SetupTest() {
	store, err := sqlite.New(filepath.Join(s.T().TempDir(), "bills.db"))
	require.NoError(s.T(), err, "failed to create test database")
	codes, err := NewSnowflakeCodes(1)
	require.NoError(s.T(), err)

	s.store = store
	s.sink = newRecordingSink()
	s.now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s.engine = New(store, codes, WithSink(s.sink), WithClock(func() time.Time { return s.now }))
}

func (s *EngineTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (s *EngineTestSuite) createDinner() *models.Bill {
	created, err := s.engine.CreateBill(context.Background(), creator, CreateBillInput{
		Title:       "Dinner",
		TotalAmount: amount("100"),
		BillDate:    "2024-01-01",
	})
	require.NoError(s.T(), err)
	return created.Bill
}

func (s *EngineTestSuite) invite(billID string, invitees ...Invitee) {
	_, err := s.engine.Invite(context.Background(), creator, billID, InviteInput{Invitees: invitees})
	require.NoError(s.T(), err)
}

func (s *EngineTestSuite) respond(billID, userID, action string) *RespondResult {
	res, err := s.engine.Respond(context.Background(), userID, billID, RespondInput{Action: action})
	require.NoError(s.T(), err)
	return res
}

func (s *EngineTestSuite) participants(billID string) map[string]models.Participant {
	ps, err := s.store.ListParticipants(context.Background(), billID)
	require.NoError(s.T(), err)
	out := make(map[string]models.Participant, len(ps))
	for _, p := range ps {
		out[p.UserID] = p
	}
	return out
}

func (s *EngineTestSuite) status(billID string) models.BillStatus {
	bill, err := s.store.GetBill(context.Background(), billID)
	require.NoError(s.T(), err)
	return bill.Status
}

func (s *EngineTestSuite) assertConserved(billID string) {
	bill, err := s.store.GetBill(context.Background(), billID)
	require.NoError(s.T(), err)
	sum := decimal.Zero
	for _, p := range s.participants(billID) {
		sum = sum.Add(p.AmountOwed)
	}
	assert.True(s.T(), sum.Equal(bill.TotalAmount), "participants sum to %s, total is %s", sum, bill.TotalAmount)
}

func (s *EngineTestSuite) TestCreateBill() {
	bill := s.createDinner()

	assert.Equal(s.T(), models.StatusDraft, bill.Status)
	assert.Equal(s.T(), models.KindOneTime, bill.Kind)
	assert.Regexp(s.T(), `^BILL-[0-9A-Z]+$`, bill.Code)
	assert.Nil(s.T(), bill.NextDueDate)

	activity, err := s.store.ListActivity(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), activity, 1)
	assert.Equal(s.T(), models.ActionCreated, activity[0].Action)
}

func (s *EngineTestSuite) TestCreateBill_MonthlyNextDueDate() {
	created, err := s.engine.CreateBill(context.Background(), creator, CreateBillInput{
		Title:       "Rent",
		TotalAmount: amount("1200"),
		BillDate:    "2024-01-01",
		DueDate:     "2024-01-31",
		Kind:        models.KindMonthly,
		Items: []ItemInput{
			{Name: "Rent", UnitPrice: amount("1000")},
			{Name: "Parking", Quantity: 2, UnitPrice: amount("100")},
		},
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "2024-03-02", calendar.FormatOptional(created.Bill.NextDueDate))
	require.Len(s.T(), created.Items, 2)
	assert.Equal(s.T(), 1, created.Items[0].Quantity)
	assert.True(s.T(), created.Items[1].TotalPrice.Equal(amount("200")))
}

func (s *EngineTestSuite) TestCreateBill_Validation() {
	tests := []struct {
		name string
		in   CreateBillInput
	}{
		{"missing title", CreateBillInput{TotalAmount: amount("10"), BillDate: "2024-01-01"}},
		{"zero total", CreateBillInput{Title: "x", TotalAmount: decimal.Zero, BillDate: "2024-01-01"}},
		{"negative total", CreateBillInput{Title: "x", TotalAmount: amount("-5"), BillDate: "2024-01-01"}},
		{"sub-cent total", CreateBillInput{Title: "x", TotalAmount: amount("0.004"), BillDate: "2024-01-01"}},
		{"missing bill date", CreateBillInput{Title: "x", TotalAmount: amount("10")}},
		{"bad bill date", CreateBillInput{Title: "x", TotalAmount: amount("10"), BillDate: "01/02/2024"}},
		{"bad kind", CreateBillInput{Title: "x", TotalAmount: amount("10"), BillDate: "2024-01-01", Kind: "weekly"}},
		{"item without name", CreateBillInput{Title: "x", TotalAmount: amount("10"), BillDate: "2024-01-01", Items: []ItemInput{{UnitPrice: amount("1")}}}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.engine.CreateBill(context.Background(), creator, tt.in)
			var verr *ValidationError
			assert.ErrorAs(s.T(), err, &verr)
		})
	}

	created, err := s.store.ListBillsByCreator(context.Background(), creator)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), created, "invalid input must not persist anything")
}

func (s *EngineTestSuite) TestAcceptFinalizesBill() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})
	assert.Equal(s.T(), models.StatusPendingResponses, s.status(bill.ID))

	res := s.respond(bill.ID, "userA", ActionAccept)
	assert.Equal(s.T(), models.StatusFinalized, res.Status)
	assert.True(s.T(), res.AutoFinalized)

	ps := s.participants(bill.ID)
	require.Len(s.T(), ps, 2)
	assert.True(s.T(), ps[creator].AmountOwed.Equal(amount("60")))
	assert.True(s.T(), ps[creator].IsCreator)
	assert.True(s.T(), ps["userA"].AmountOwed.Equal(amount("40")))
	assert.False(s.T(), ps["userA"].IsCreator)
	s.assertConserved(bill.ID)

	invitations := s.sink.For("userA")
	require.Len(s.T(), invitations, 2)
	assert.Equal(s.T(), notify.EventBillInvitation, invitations[0].Type)
	assert.Equal(s.T(), notify.EventBillStatusUpdate, invitations[1].Type)

	creatorEvents := s.sink.For(creator)
	require.Len(s.T(), creatorEvents, 1)
	assert.Equal(s.T(), notify.EventBillFinalized, creatorEvents[0].Type)
	assert.True(s.T(), creatorEvents[0].Data.AutoFinalized)
}

func (s *EngineTestSuite) TestRejectCancelsBill() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})

	res := s.respond(bill.ID, "userA", ActionReject)
	assert.Equal(s.T(), models.StatusCancelled, res.Status)
	assert.False(s.T(), res.AutoFinalized)
	assert.Empty(s.T(), s.participants(bill.ID))
}

func (s *EngineTestSuite) TestSecondResponseFails() {
	bill := s.createDinner()
	s.invite(bill.ID,
		Invitee{UserID: "userA", ProposedAmount: amount("40")},
		Invitee{UserID: "userB", ProposedAmount: amount("20")},
	)
	s.respond(bill.ID, "userA", ActionAccept)

	_, err := s.engine.Respond(context.Background(), "userA", bill.ID, RespondInput{Action: ActionReject})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	inv, err := s.store.GetInvitation(context.Background(), bill.ID, "userA")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.InvitationAccepted, inv.Status)
	assert.Equal(s.T(), models.StatusPendingResponses, s.status(bill.ID))

	_, err = s.engine.Respond(context.Background(), "stranger", bill.ID, RespondInput{Action: ActionAccept})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.engine.Respond(context.Background(), "userB", bill.ID, RespondInput{Action: "maybe"})
	var verr *ValidationError
	assert.ErrorAs(s.T(), err, &verr)
}

func (s *EngineTestSuite) TestAutoTransitionForEveryAssignment() {
	for n := 1; n <= 3; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			s.Run(fmt.Sprintf("n=%d mask=%b", n, mask), func() {
				bill := s.createDinner()
				invitees := make([]Invitee, n)
				for i := range invitees {
					invitees[i] = Invitee{UserID: fmt.Sprintf("user%d", i), ProposedAmount: amount("10")}
				}
				s.invite(bill.ID, invitees...)

				for i := 0; i < n; i++ {
					action := ActionReject
					if mask&(1<<i) != 0 {
						action = ActionAccept
					}
					res := s.respond(bill.ID, invitees[i].UserID, action)
					if i < n-1 {
						assert.Equal(s.T(), models.StatusPendingResponses, res.Status)
					}
				}

				want := models.StatusCancelled
				if mask != 0 {
					want = models.StatusFinalized
				}
				assert.Equal(s.T(), want, s.status(bill.ID))
				if mask != 0 {
					s.assertConserved(bill.ID)
				}
			})
		}
	}
}

func (s *EngineTestSuite) TestFinalizeIsIdempotent() {
	bill := s.createDinner()
	s.invite(bill.ID,
		Invitee{UserID: "userA", ProposedAmount: amount("33.33")},
		Invitee{UserID: "userB", ProposedAmount: amount("25")},
	)
	s.respond(bill.ID, "userA", ActionAccept)

	first, err := s.engine.Finalize(context.Background(), creator, bill.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, first.ParticipantCount())
	assert.True(s.T(), first.CreatorPays.Equal(amount("66.67")))
	assert.True(s.T(), first.RejectedAmount.IsZero())
	before := s.participants(bill.ID)

	second, err := s.engine.Finalize(context.Background(), creator, bill.ID)
	require.NoError(s.T(), err)
	after := s.participants(bill.ID)

	assert.Equal(s.T(), first.Shares, second.Shares)
	require.Len(s.T(), after, len(before))
	for user, p := range before {
		assert.True(s.T(), p.AmountOwed.Equal(after[user].AmountOwed))
		assert.Equal(s.T(), p.IsCreator, after[user].IsCreator)
	}
	s.assertConserved(bill.ID)
}

func (s *EngineTestSuite) TestFinalizeKeepsRecordedPayments() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})
	s.respond(bill.ID, "userA", ActionAccept)

	_, err := s.engine.MarkPaid(context.Background(), "userA", bill.ID, MarkPaidInput{})
	require.NoError(s.T(), err)

	_, err = s.engine.Finalize(context.Background(), creator, bill.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentPaid, s.participants(bill.ID)["userA"].PaymentStatus)
}

func (s *EngineTestSuite) TestFinalizeGuards() {
	bill := s.createDinner()

	_, err := s.engine.Finalize(context.Background(), "userA", bill.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.engine.Finalize(context.Background(), creator, "missing")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})
	s.respond(bill.ID, "userA", ActionReject)
	_, err = s.engine.Finalize(context.Background(), creator, bill.ID)
	assert.ErrorIs(s.T(), err, ErrInvalidState)
}

func (s *EngineTestSuite) TestMarkPaidSettlesBill() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})
	s.respond(bill.ID, "userA", ActionAccept)

	res, err := s.engine.MarkPaid(context.Background(), creator, bill.ID, MarkPaidInput{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, res.Progress.Unpaid)
	assert.Equal(s.T(), models.StatusFinalized, res.Status)

	res, err = s.engine.MarkPaid(context.Background(), "userA", bill.ID, MarkPaidInput{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, res.Progress.Unpaid)
	assert.Equal(s.T(), models.StatusPaid, res.Status)
	assert.Equal(s.T(), models.StatusPaid, s.status(bill.ID))

	res, err = s.engine.MarkPaid(context.Background(), "userA", bill.ID, MarkPaidInput{})
	require.NoError(s.T(), err)
	assert.True(s.T(), res.AlreadyPaid)
}

func (s *EngineTestSuite) TestMarkPaidAuthorization() {
	bill := s.createDinner()
	s.invite(bill.ID,
		Invitee{UserID: "userA", ProposedAmount: amount("40")},
		Invitee{UserID: "userB", ProposedAmount: amount("10")},
	)
	s.respond(bill.ID, "userA", ActionAccept)
	s.respond(bill.ID, "userB", ActionAccept)

	_, err := s.engine.MarkPaid(context.Background(), "userA", bill.ID, MarkPaidInput{UserID: "userB"})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.engine.MarkPaid(context.Background(), "stranger", bill.ID, MarkPaidInput{})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.engine.MarkPaid(context.Background(), creator, bill.ID, MarkPaidInput{UserID: "userB"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentPaid, s.participants(bill.ID)["userB"].PaymentStatus)
}

func (s *EngineTestSuite) TestMarkPaidRollsMonthlyBillForward() {
	created, err := s.engine.CreateBill(context.Background(), creator, CreateBillInput{
		Title:       "Internet",
		TotalAmount: amount("60"),
		BillDate:    "2024-01-01",
		DueDate:     "2024-01-10",
		Kind:        models.KindMonthly,
	})
	require.NoError(s.T(), err)
	billID := created.Bill.ID
	s.invite(billID, Invitee{UserID: "userA", ProposedAmount: amount("30")})
	s.respond(billID, "userA", ActionAccept)

	for _, user := range []string{creator, "userA"} {
		_, err := s.engine.MarkPaid(context.Background(), user, billID, MarkPaidInput{})
		require.NoError(s.T(), err)
	}

	bill, err := s.store.GetBill(context.Background(), billID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusPaid, bill.Status)
	assert.Equal(s.T(), "2024-03-10", calendar.FormatOptional(bill.NextDueDate))
}

func (s *EngineTestSuite) TestInviteGuards() {
	bill := s.createDinner()

	_, err := s.engine.Invite(context.Background(), "userA", bill.ID, InviteInput{Invitees: []Invitee{{UserID: "userB", ProposedAmount: amount("1")}}})
	assert.ErrorIs(s.T(), err, ErrNotFound, "only the creator may invite")

	_, err = s.engine.Invite(context.Background(), creator, bill.ID, InviteInput{Invitees: []Invitee{{UserID: creator, ProposedAmount: amount("1")}}})
	var verr *ValidationError
	assert.ErrorAs(s.T(), err, &verr)

	_, err = s.engine.Invite(context.Background(), creator, bill.ID, InviteInput{Invitees: []Invitee{
		{UserID: "userA", ProposedAmount: amount("1")},
		{UserID: "userA", ProposedAmount: amount("2")},
	}})
	assert.ErrorAs(s.T(), err, &verr, "duplicate invitees")

	_, err = s.engine.Invite(context.Background(), creator, bill.ID, InviteInput{Invitees: []Invitee{{UserID: "userA", ProposedAmount: amount("0.001")}}})
	assert.ErrorAs(s.T(), err, &verr, "a proposal that rounds to zero")
	invs, err := s.store.ListInvitations(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), invs)

	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("60")})
	_, err = s.engine.Invite(context.Background(), creator, bill.ID, InviteInput{Invitees: []Invitee{{UserID: "userB", ProposedAmount: amount("50")}}})
	assert.ErrorIs(s.T(), err, ErrOvercommitted)

	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("50")}, Invitee{UserID: "userB", ProposedAmount: amount("50")})
	invs, err = s.store.ListInvitations(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), invs, 2, "re-inviting updates in place")

	s.respond(bill.ID, "userA", ActionAccept)
	s.respond(bill.ID, "userB", ActionAccept)
	_, err = s.engine.Invite(context.Background(), creator, bill.ID, InviteInput{Invitees: []Invitee{{UserID: "userC", ProposedAmount: amount("1")}}})
	assert.ErrorIs(s.T(), err, ErrInvalidState)

	ps := s.participants(bill.ID)
	assert.True(s.T(), ps[creator].AmountOwed.IsZero())
	s.assertConserved(bill.ID)
}

func (s *EngineTestSuite) TestInviteIgnoresRejectedProposals() {
	bill := s.createDinner()
	s.invite(bill.ID,
		Invitee{UserID: "userA", ProposedAmount: amount("60")},
		Invitee{UserID: "userB", ProposedAmount: amount("10")},
	)
	s.respond(bill.ID, "userA", ActionReject)

	s.invite(bill.ID, Invitee{UserID: "userC", ProposedAmount: amount("50")})
	assert.Equal(s.T(), models.StatusPendingResponses, s.status(bill.ID))

	// Re-proposing to the rejecting user counts again.
	_, err := s.engine.Invite(context.Background(), creator, bill.ID, InviteInput{Invitees: []Invitee{{UserID: "userA", ProposedAmount: amount("41")}}})
	assert.ErrorIs(s.T(), err, ErrOvercommitted)

	s.respond(bill.ID, "userB", ActionAccept)
	res := s.respond(bill.ID, "userC", ActionAccept)
	assert.Equal(s.T(), models.StatusFinalized, res.Status)
	ps := s.participants(bill.ID)
	assert.True(s.T(), ps[creator].AmountOwed.Equal(amount("40")))
	s.assertConserved(bill.ID)
}

func (s *EngineTestSuite) TestCreateBillRoundsAmounts() {
	created, err := s.engine.CreateBill(context.Background(), creator, CreateBillInput{
		Title:       "Coffee",
		TotalAmount: amount("3.456"),
		BillDate:    "2024-01-01",
	})
	require.NoError(s.T(), err)
	assert.True(s.T(), created.Bill.TotalAmount.Equal(amount("3.46")))
}

func (s *EngineTestSuite) TestCheckStatus() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})

	res, err := s.engine.CheckStatus(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), res.Updated)
	assert.Equal(s.T(), models.StatusPendingResponses, res.Status)

	_, err = s.engine.CheckStatus(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *EngineTestSuite) TestConcurrentRespondersTransitionOnce() {
	const n = 8
	bill := s.createDinner()
	invitees := make([]Invitee, n)
	for i := range invitees {
		invitees[i] = Invitee{UserID: fmt.Sprintf("user%d", i), ProposedAmount: amount("10")}
	}
	s.invite(bill.ID, invitees...)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		autos  int
		failed []error
	)
	for _, inv := range invitees {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			res, err := s.engine.Respond(context.Background(), userID, bill.ID, RespondInput{Action: ActionAccept})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			if res.AutoFinalized {
				autos++
			}
		}(inv.UserID)
	}
	wg.Wait()

	require.Empty(s.T(), failed)
	assert.Equal(s.T(), 1, autos, "exactly one responder observes the last resolution")
	assert.Equal(s.T(), models.StatusFinalized, s.status(bill.ID))
	assert.Len(s.T(), s.participants(bill.ID), n+1)
	s.assertConserved(bill.ID)

	activity, err := s.store.ListActivity(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	finalized := 0
	for _, entry := range activity {
		if entry.Action == models.ActionFinalized {
			finalized++
		}
	}
	assert.Equal(s.T(), 1, finalized)
}

func (s *EngineTestSuite) TestTemplateIsNeverAdvanced() {
	created, err := s.engine.CreateBill(context.Background(), creator, CreateBillInput{
		Title:       "Utilities",
		TotalAmount: amount("90"),
		BillDate:    "2024-01-01",
		Kind:        models.KindMonthly,
		IsTemplate:  true,
		AutoInvite:  true,
	})
	require.NoError(s.T(), err)
	template := created.Bill
	assert.Equal(s.T(), models.StatusTemplate, template.Status)

	status, err := s.engine.Invite(context.Background(), creator, template.ID, InviteInput{Invitees: []Invitee{{UserID: "userA", ProposedAmount: amount("30")}}})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusTemplate, status)
	assert.Empty(s.T(), s.sink.For("userA"), "template rosters notify nobody")

	_, err = s.engine.Respond(context.Background(), "userA", template.ID, RespondInput{Action: ActionAccept})
	assert.ErrorIs(s.T(), err, ErrInvalidState)
	_, err = s.engine.Finalize(context.Background(), creator, template.ID)
	assert.ErrorIs(s.T(), err, ErrInvalidState)
	_, err = s.engine.MarkPaid(context.Background(), creator, template.ID, MarkPaidInput{})
	assert.ErrorIs(s.T(), err, ErrInvalidState)
	assert.Equal(s.T(), models.StatusTemplate, s.status(template.ID))
}

func (s *EngineTestSuite) createTemplate(autoInvite bool) *models.Bill {
	created, err := s.engine.CreateBill(context.Background(), creator, CreateBillInput{
		Title:       "Utilities",
		TotalAmount: amount("90"),
		BillDate:    "2024-01-01",
		DueDate:     "2024-01-31",
		Kind:        models.KindMonthly,
		IsTemplate:  true,
		AutoInvite:  autoInvite,
		Notes:       "template notes",
		Items: []ItemInput{
			{Name: "Power", Quantity: 1, UnitPrice: amount("60")},
			{Name: "Water", Description: "cold", Quantity: 3, UnitPrice: amount("10")},
		},
	})
	require.NoError(s.T(), err)
	return created.Bill
}

func (s *EngineTestSuite) TestInstantiateFromTemplate() {
	template := s.createTemplate(false)
	templateItems, err := s.store.ListItems(context.Background(), template.ID)
	require.NoError(s.T(), err)

	created, err := s.engine.InstantiateFromTemplate(context.Background(), creator, template.ID, InstantiateInput{
		BillDate: "2024-02-01",
		DueDate:  "2024-02-29",
	})
	require.NoError(s.T(), err)

	bill := created.Bill
	assert.Equal(s.T(), models.StatusDraft, bill.Status)
	assert.Equal(s.T(), template.ID, bill.ParentBillID)
	assert.False(s.T(), bill.IsTemplate)
	assert.Equal(s.T(), "template notes", bill.Notes)
	assert.Equal(s.T(), "2024-03-29", calendar.FormatOptional(bill.NextDueDate))
	assert.NotEqual(s.T(), template.Code, bill.Code)

	items, err := s.store.ListItems(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), items, len(templateItems))
	for i := range items {
		assert.NotEqual(s.T(), templateItems[i].ID, items[i].ID)
		assert.Equal(s.T(), templateItems[i].Name, items[i].Name)
		assert.Equal(s.T(), templateItems[i].Description, items[i].Description)
		assert.Equal(s.T(), templateItems[i].Quantity, items[i].Quantity)
		assert.True(s.T(), templateItems[i].UnitPrice.Equal(items[i].UnitPrice))
		assert.True(s.T(), templateItems[i].TotalPrice.Equal(items[i].TotalPrice))
	}

	after, err := s.store.ListItems(context.Background(), template.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), templateItems, after, "template rows are untouched")
	assert.Equal(s.T(), models.StatusTemplate, s.status(template.ID))

	_, err = s.engine.InstantiateFromTemplate(context.Background(), "userA", template.ID, InstantiateInput{BillDate: "2024-02-01"})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.engine.InstantiateFromTemplate(context.Background(), creator, bill.ID, InstantiateInput{BillDate: "2024-02-01"})
	assert.ErrorIs(s.T(), err, ErrNotFound, "a regular bill is not a template")
}

func (s *EngineTestSuite) TestInstantiateWithAutoInvite() {
	template := s.createTemplate(true)
	_, err := s.engine.Invite(context.Background(), creator, template.ID, InviteInput{Invitees: []Invitee{{UserID: "userA", ProposedAmount: amount("30")}}})
	require.NoError(s.T(), err)

	created, err := s.engine.InstantiateFromTemplate(context.Background(), creator, template.ID, InstantiateInput{BillDate: "2024-02-01"})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), models.StatusPendingResponses, created.Bill.Status)
	require.Len(s.T(), created.Invitations, 1)
	assert.Equal(s.T(), models.InvitationPending, created.Invitations[0].Status)
	assert.True(s.T(), created.Invitations[0].ProposedAmount.Equal(amount("30")))

	events := s.sink.For("userA")
	require.Len(s.T(), events, 1)
	assert.Equal(s.T(), notify.EventBillInvitation, events[0].Type)
	assert.Equal(s.T(), created.Bill.ID, events[0].Data.BillID)
}

func (s *EngineTestSuite) TestSweepDueRecurring() {
	template := s.createTemplate(false)
	created, err := s.engine.InstantiateFromTemplate(context.Background(), creator, template.ID, InstantiateInput{
		BillDate: "2024-01-01",
		DueDate:  "2024-01-31",
	})
	require.NoError(s.T(), err)
	source := created.Bill

	_, err = s.engine.Finalize(context.Background(), creator, source.ID)
	require.NoError(s.T(), err)
	_, err = s.engine.MarkPaid(context.Background(), creator, source.ID, MarkPaidInput{})
	require.NoError(s.T(), err)

	paid, err := s.store.GetBill(context.Background(), source.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), models.StatusPaid, paid.Status)
	nextDue := *paid.NextDueDate

	res, err := s.engine.SweepDueRecurring(context.Background(), nextDue.AddDate(0, 0, -1))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, res.Processed, "nothing is due yet")

	res, err = s.engine.SweepDueRecurring(context.Background(), nextDue)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, res.Processed)
	require.Len(s.T(), res.Bills, 1)

	spawned := res.Bills[0]
	assert.Equal(s.T(), "2024-02-01", calendar.Format(spawned.BillDate))
	assert.Equal(s.T(), "2024-03-02", calendar.FormatOptional(spawned.DueDate))
	assert.Equal(s.T(), "2024-04-02", calendar.FormatOptional(spawned.NextDueDate))
	assert.Equal(s.T(), source.ID, spawned.RecurrenceSourceID)
	assert.Equal(s.T(), template.ID, spawned.ParentBillID)
	assert.Equal(s.T(), models.StatusDraft, spawned.Status)

	items, err := s.store.ListItems(context.Background(), spawned.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), items, 2)

	res, err = s.engine.SweepDueRecurring(context.Background(), nextDue.AddDate(0, 2, 0))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, res.Processed, "a source spawns at most once")
}

// faultyStore fails a chosen write inside every transaction.
type faultyStore struct {
	storage.Store
	failInsertParticipant bool
}

func (f *faultyStore) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	return f.Store.InTx(ctx, func(tx storage.Tx) error {
		return fn(&faultyTx{Tx: tx, store: f})
	})
}

type faultyTx struct {
	storage.Tx
	store *faultyStore
}

var errInjected = errors.New("injected storage fault")

func (t *faultyTx) InsertParticipant(ctx context.Context, p *models.Participant) error {
	if t.store.failInsertParticipant {
		return errInjected
	}
	return t.Tx.InsertParticipant(ctx, p)
}

func (s *EngineTestSuite) TestFailedAutoFinalizeLeavesNoTrace() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")})
	eventsBefore := s.sink.Total()

	codes, err := NewSnowflakeCodes(2)
	require.NoError(s.T(), err)
	faulty := New(&faultyStore{Store: s.store, failInsertParticipant: true}, codes, WithSink(s.sink))

	_, err = faulty.Respond(context.Background(), "userA", bill.ID, RespondInput{Action: ActionAccept})
	require.ErrorIs(s.T(), err, errInjected)

	inv, err := s.store.GetInvitation(context.Background(), bill.ID, "userA")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.InvitationPending, inv.Status)
	assert.Equal(s.T(), models.StatusPendingResponses, s.status(bill.ID))
	assert.Empty(s.T(), s.participants(bill.ID))
	assert.Equal(s.T(), eventsBefore, s.sink.Total(), "no notifications for a failed attempt")

	activity, err := s.store.ListActivity(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), activity, 2, "only created and invited entries")

	res := s.respond(bill.ID, "userA", ActionAccept)
	assert.True(s.T(), res.AutoFinalized)
}

func (s *EngineTestSuite) TestQueries() {
	bill := s.createDinner()
	s.invite(bill.ID, Invitee{UserID: "userA", ProposedAmount: amount("40")}, Invitee{UserID: "userB", ProposedAmount: amount("10")})

	view, err := s.engine.GetBillStatus(context.Background(), "userA", bill.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), view.MyInvitation)
	assert.Nil(s.T(), view.Invitations)
	assert.Equal(s.T(), 2, view.Counts.Pending)

	view, err = s.engine.GetBillStatus(context.Background(), creator, bill.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), view.MyInvitation)
	assert.Len(s.T(), view.Invitations, 2)

	invited, err := s.engine.ListInvited(context.Background(), "userA")
	require.NoError(s.T(), err)
	assert.Len(s.T(), invited, 1)

	s.respond(bill.ID, "userA", ActionAccept)
	s.respond(bill.ID, "userB", ActionReject)

	details, err := s.engine.GetBillDetails(context.Background(), bill.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusFinalized, details.Bill.Status)
	assert.Len(s.T(), details.Participants, 2)
	assert.Equal(s.T(), 2, details.Progress.Unpaid)
	assert.True(s.T(), details.Progress.Outstanding.Equal(amount("100")))

	byCode, err := s.engine.GetBillByCode(context.Background(), bill.Code)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), bill.ID, byCode.ID)

	_, err = s.engine.GetBillDetails(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	participating, err := s.engine.ListParticipating(context.Background(), "userA")
	require.NoError(s.T(), err)
	require.Len(s.T(), participating, 1)
	assert.True(s.T(), participating[0].AmountOwed.Equal(amount("40")))

	created, err := s.engine.ListCreated(context.Background(), creator)
	require.NoError(s.T(), err)
	require.Len(s.T(), created, 1)
	assert.Equal(s.T(), 1, created[0].AcceptedInvitations)
	assert.Equal(s.T(), 1, created[0].RejectedInvitations)
}
