package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/api"
	"github.com/mmynk/billsplit/internal/billing"
	"github.com/mmynk/billsplit/internal/models"
)

// BillService implements the Connect BillService.
type BillService struct {
	engine *billing.Engine
}

var _ api.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a new BillService backed by the given engine.
func NewBillService(engine *billing.Engine) *BillService {
	return &BillService{engine: engine}
}

// CreateBill creates a bill or template owned by the caller.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	created, err := s.engine.CreateBill(ctx, userID, billing.CreateBillInput{
		Title:       msg.Title,
		TotalAmount: msg.TotalAmount,
		BillDate:    msg.BillDate,
		DueDate:     msg.DueDate,
		Notes:       msg.Notes,
		Items:       itemsFromAPI(msg.Items),
		Kind:        models.BillKind(msg.BillType),
		AutoInvite:  msg.AutoInviteUsers,
		IsTemplate:  msg.IsTemplate,
	})
	if err != nil {
		return nil, toConnectError("CreateBill", err)
	}

	return connect.NewResponse(&api.CreateBillResponse{
		Bill:  billToAPI(created.Bill),
		Items: itemsToAPI(created.Items),
	}), nil
}

// InviteUsers proposes shares of a bill to other users.
func (s *BillService) InviteUsers(ctx context.Context, req *connect.Request[api.InviteUsersRequest]) (*connect.Response[api.InviteUsersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	invitees := make([]billing.Invitee, len(req.Msg.Invitations))
	for i, inv := range req.Msg.Invitations {
		invitees[i] = billing.Invitee{UserID: inv.UserID, ProposedAmount: inv.ProposedAmount}
	}
	status, err := s.engine.Invite(ctx, userID, req.Msg.BillID, billing.InviteInput{Invitees: invitees})
	if err != nil {
		return nil, toConnectError("InviteUsers", err)
	}

	return connect.NewResponse(&api.InviteUsersResponse{
		BillID:  req.Msg.BillID,
		Status:  string(status),
		Invited: len(invitees),
	}), nil
}

// RespondToInvitation accepts or rejects the caller's invitation.
func (s *BillService) RespondToInvitation(ctx context.Context, req *connect.Request[api.RespondToInvitationRequest]) (*connect.Response[api.RespondToInvitationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	res, err := s.engine.Respond(ctx, userID, req.Msg.BillID, billing.RespondInput{Action: req.Msg.Action})
	if err != nil {
		return nil, toConnectError("RespondToInvitation", err)
	}

	return connect.NewResponse(&api.RespondToInvitationResponse{
		BillID:        res.BillID,
		Status:        string(res.Status),
		AutoFinalized: res.AutoFinalized,
	}), nil
}

// FinalizeBill recomputes the participants of a bill.
func (s *BillService) FinalizeBill(ctx context.Context, req *connect.Request[api.FinalizeBillRequest]) (*connect.Response[api.FinalizeBillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	fin, err := s.engine.Finalize(ctx, userID, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError("FinalizeBill", err)
	}

	return connect.NewResponse(&api.FinalizeBillResponse{
		BillID:         req.Msg.BillID,
		TotalAmount:    fin.Total,
		Participants:   fin.ParticipantCount(),
		CreatorPays:    fin.CreatorPays,
		RejectedAmount: fin.RejectedAmount,
		Shares:         sharesToAPI(fin.Shares),
	}), nil
}

// MarkPaid records a participant's payment.
func (s *BillService) MarkPaid(ctx context.Context, req *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	res, err := s.engine.MarkPaid(ctx, userID, req.Msg.BillID, billing.MarkPaidInput{UserID: req.Msg.UserID})
	if err != nil {
		return nil, toConnectError("MarkPaid", err)
	}

	return connect.NewResponse(&api.MarkPaidResponse{
		BillID:      res.BillID,
		UserID:      res.UserID,
		Status:      string(res.Status),
		AlreadyPaid: res.AlreadyPaid,
		Progress:    progressToAPI(res.Progress),
	}), nil
}

// CheckBillStatus applies a pending automatic transition, if any.
func (s *BillService) CheckBillStatus(ctx context.Context, req *connect.Request[api.CheckBillStatusRequest]) (*connect.Response[api.CheckBillStatusResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	res, err := s.engine.CheckStatus(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError("CheckBillStatus", err)
	}

	return connect.NewResponse(&api.CheckBillStatusResponse{
		BillID:  req.Msg.BillID,
		Status:  string(res.Status),
		Updated: res.Updated,
	}), nil
}

// GetBill returns a bill with its items, invitations, participants and activity.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	d, err := s.engine.GetBillDetails(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError("GetBill", err)
	}

	return connect.NewResponse(&api.GetBillResponse{
		Bill:         billToAPI(d.Bill),
		Items:        itemsToAPI(d.Items),
		Invitations:  invitationsToAPI(d.Invitations),
		Participants: participantsToAPI(d.Participants),
		Activity:     activityToAPI(d.Activity),
		Progress:     progressToAPI(d.Progress),
	}), nil
}

func (s *BillService) GetBillByCode(ctx context.Context, req *connect.Request[api.GetBillByCodeRequest]) (*connect.Response[api.GetBillByCodeResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("bill_code", req.Msg.Code); err != nil {
		return nil, err
	}

	bill, err := s.engine.GetBillByCode(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError("GetBillByCode", err)
	}
	return connect.NewResponse(&api.GetBillByCodeResponse{Bill: billToAPI(bill)}), nil
}

// GetBillStatus returns the invitation state of a bill as seen by the caller.
func (s *BillService) GetBillStatus(ctx context.Context, req *connect.Request[api.GetBillStatusRequest]) (*connect.Response[api.GetBillStatusResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireField("bill_id", req.Msg.BillID); err != nil {
		return nil, err
	}

	view, err := s.engine.GetBillStatus(ctx, userID, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError("GetBillStatus", err)
	}

	resp := &api.GetBillStatusResponse{
		Bill:   billToAPI(view.Bill),
		Counts: countsToAPI(view.Counts),
	}
	if view.MyInvitation != nil {
		inv := invitationToAPI(view.MyInvitation)
		resp.MyInvitation = &inv
	}
	if view.Invitations != nil {
		resp.Invitations = invitationsToAPI(view.Invitations)
	}
	return connect.NewResponse(resp), nil
}

func (s *BillService) ListCreatedBills(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListCreatedBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.engine.ListCreated(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListCreatedBills", err)
	}

	bills := make([]api.CreatedBill, len(summaries))
	for i := range summaries {
		sum := &summaries[i]
		bills[i] = api.CreatedBill{
			Bill: billToAPI(&sum.Bill),
			InvitationCounts: api.InvitationCounts{
				Total:    sum.TotalInvitations,
				Accepted: sum.AcceptedInvitations,
				Rejected: sum.RejectedInvitations,
				Pending:  sum.PendingInvitations,
			},
		}
	}
	slog.Debug("Listed created bills", "user_id", userID, "count", len(bills))
	return connect.NewResponse(&api.ListCreatedBillsResponse{Bills: bills}), nil
}

func (s *BillService) ListInvitedBills(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListInvitedBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	invited, err := s.engine.ListInvited(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListInvitedBills", err)
	}

	bills := make([]api.InvitedBill, len(invited))
	for i := range invited {
		b := &invited[i]
		bills[i] = api.InvitedBill{
			Bill:             billToAPI(&b.Bill),
			InvitationStatus: string(b.InvitationStatus),
			ProposedAmount:   b.ProposedAmount,
			InvitedAt:        b.InvitedAt,
		}
	}
	return connect.NewResponse(&api.ListInvitedBillsResponse{Bills: bills}), nil
}

func (s *BillService) ListParticipatingBills(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListParticipatingBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	participating, err := s.engine.ListParticipating(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListParticipatingBills", err)
	}

	bills := make([]api.ParticipatingBill, len(participating))
	for i := range participating {
		b := &participating[i]
		bills[i] = api.ParticipatingBill{
			Bill:          billToAPI(&b.Bill),
			AmountOwed:    b.AmountOwed,
			IsCreator:     b.IsCreator,
			PaymentStatus: string(b.PaymentStatus),
			PaidAt:        b.PaidAt,
		}
	}
	return connect.NewResponse(&api.ListParticipatingBillsResponse{Bills: bills}), nil
}

func (s *BillService) ListTemplates(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListTemplatesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.engine.ListTemplates(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListTemplates", err)
	}
	return connect.NewResponse(&api.ListTemplatesResponse{Templates: billsToAPI(templates)}), nil
}

func (s *BillService) ListMonthlyBills(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListMonthlyBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.engine.ListMonthly(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListMonthlyBills", err)
	}

	bills := make([]api.MonthlyBill, len(monthly))
	for i := range monthly {
		b := &monthly[i]
		bills[i] = api.MonthlyBill{
			Bill:          billToAPI(&b.Bill),
			Role:          b.Role,
			PaymentStatus: string(b.PaymentStatus),
		}
		if b.AmountOwed.Valid {
			owed := b.AmountOwed.Decimal
			bills[i].AmountOwed = &owed
		}
	}
	return connect.NewResponse(&api.ListMonthlyBillsResponse{Bills: bills}), nil
}
