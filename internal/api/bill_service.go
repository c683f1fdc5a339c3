package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "billsplit.v1.BillService"

// Procedure names of BillService.
const (
	BillServiceCreateBillProcedure             = "/billsplit.v1.BillService/CreateBill"
	BillServiceInviteUsersProcedure            = "/billsplit.v1.BillService/InviteUsers"
	BillServiceRespondToInvitationProcedure    = "/billsplit.v1.BillService/RespondToInvitation"
	BillServiceFinalizeBillProcedure           = "/billsplit.v1.BillService/FinalizeBill"
	BillServiceMarkPaidProcedure               = "/billsplit.v1.BillService/MarkPaid"
	BillServiceCheckBillStatusProcedure        = "/billsplit.v1.BillService/CheckBillStatus"
	BillServiceGetBillProcedure                = "/billsplit.v1.BillService/GetBill"
	BillServiceGetBillByCodeProcedure          = "/billsplit.v1.BillService/GetBillByCode"
	BillServiceGetBillStatusProcedure          = "/billsplit.v1.BillService/GetBillStatus"
	BillServiceListCreatedBillsProcedure       = "/billsplit.v1.BillService/ListCreatedBills"
	BillServiceListInvitedBillsProcedure       = "/billsplit.v1.BillService/ListInvitedBills"
	BillServiceListParticipatingBillsProcedure = "/billsplit.v1.BillService/ListParticipatingBills"
	BillServiceListTemplatesProcedure          = "/billsplit.v1.BillService/ListTemplates"
	BillServiceListMonthlyBillsProcedure       = "/billsplit.v1.BillService/ListMonthlyBills"
)

// BillServiceHandler is implemented by the bill lifecycle service.
type BillServiceHandler interface {
	CreateBill(context.Context, *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error)
	InviteUsers(context.Context, *connect.Request[InviteUsersRequest]) (*connect.Response[InviteUsersResponse], error)
	RespondToInvitation(context.Context, *connect.Request[RespondToInvitationRequest]) (*connect.Response[RespondToInvitationResponse], error)
	FinalizeBill(context.Context, *connect.Request[FinalizeBillRequest]) (*connect.Response[FinalizeBillResponse], error)
	MarkPaid(context.Context, *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error)
	CheckBillStatus(context.Context, *connect.Request[CheckBillStatusRequest]) (*connect.Response[CheckBillStatusResponse], error)
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error)
	GetBillByCode(context.Context, *connect.Request[GetBillByCodeRequest]) (*connect.Response[GetBillByCodeResponse], error)
	GetBillStatus(context.Context, *connect.Request[GetBillStatusRequest]) (*connect.Response[GetBillStatusResponse], error)
	ListCreatedBills(context.Context, *connect.Request[Empty]) (*connect.Response[ListCreatedBillsResponse], error)
	ListInvitedBills(context.Context, *connect.Request[Empty]) (*connect.Response[ListInvitedBillsResponse], error)
	ListParticipatingBills(context.Context, *connect.Request[Empty]) (*connect.Response[ListParticipatingBillsResponse], error)
	ListTemplates(context.Context, *connect.Request[Empty]) (*connect.Response[ListTemplatesResponse], error)
	ListMonthlyBills(context.Context, *connect.Request[Empty]) (*connect.Response[ListMonthlyBillsResponse], error)
}

// NewBillServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount it on.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(BillServiceCreateBillProcedure, connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...))
	mux.Handle(BillServiceInviteUsersProcedure, connect.NewUnaryHandler(BillServiceInviteUsersProcedure, svc.InviteUsers, opts...))
	mux.Handle(BillServiceRespondToInvitationProcedure, connect.NewUnaryHandler(BillServiceRespondToInvitationProcedure, svc.RespondToInvitation, opts...))
	mux.Handle(BillServiceFinalizeBillProcedure, connect.NewUnaryHandler(BillServiceFinalizeBillProcedure, svc.FinalizeBill, opts...))
	mux.Handle(BillServiceMarkPaidProcedure, connect.NewUnaryHandler(BillServiceMarkPaidProcedure, svc.MarkPaid, opts...))
	mux.Handle(BillServiceCheckBillStatusProcedure, connect.NewUnaryHandler(BillServiceCheckBillStatusProcedure, svc.CheckBillStatus, opts...))
	mux.Handle(BillServiceGetBillProcedure, connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...))
	mux.Handle(BillServiceGetBillByCodeProcedure, connect.NewUnaryHandler(BillServiceGetBillByCodeProcedure, svc.GetBillByCode, opts...))
	mux.Handle(BillServiceGetBillStatusProcedure, connect.NewUnaryHandler(BillServiceGetBillStatusProcedure, svc.GetBillStatus, opts...))
	mux.Handle(BillServiceListCreatedBillsProcedure, connect.NewUnaryHandler(BillServiceListCreatedBillsProcedure, svc.ListCreatedBills, opts...))
	mux.Handle(BillServiceListInvitedBillsProcedure, connect.NewUnaryHandler(BillServiceListInvitedBillsProcedure, svc.ListInvitedBills, opts...))
	mux.Handle(BillServiceListParticipatingBillsProcedure, connect.NewUnaryHandler(BillServiceListParticipatingBillsProcedure, svc.ListParticipatingBills, opts...))
	mux.Handle(BillServiceListTemplatesProcedure, connect.NewUnaryHandler(BillServiceListTemplatesProcedure, svc.ListTemplates, opts...))
	mux.Handle(BillServiceListMonthlyBillsProcedure, connect.NewUnaryHandler(BillServiceListMonthlyBillsProcedure, svc.ListMonthlyBills, opts...))
	return "/" + BillServiceName + "/", mux
}

// BillServiceClient calls BillService over connect.
type BillServiceClient struct {
	createBill             *connect.Client[CreateBillRequest, CreateBillResponse]
	inviteUsers            *connect.Client[InviteUsersRequest, InviteUsersResponse]
	respondToInvitation    *connect.Client[RespondToInvitationRequest, RespondToInvitationResponse]
	finalizeBill           *connect.Client[FinalizeBillRequest, FinalizeBillResponse]
	markPaid               *connect.Client[MarkPaidRequest, MarkPaidResponse]
	checkBillStatus        *connect.Client[CheckBillStatusRequest, CheckBillStatusResponse]
	getBill                *connect.Client[GetBillRequest, GetBillResponse]
	getBillByCode          *connect.Client[GetBillByCodeRequest, GetBillByCodeResponse]
	getBillStatus          *connect.Client[GetBillStatusRequest, GetBillStatusResponse]
	listCreatedBills       *connect.Client[Empty, ListCreatedBillsResponse]
	listInvitedBills       *connect.Client[Empty, ListInvitedBillsResponse]
	listParticipatingBills *connect.Client[Empty, ListParticipatingBillsResponse]
	listTemplates          *connect.Client[Empty, ListTemplatesResponse]
	listMonthlyBills       *connect.Client[Empty, ListMonthlyBillsResponse]
}

// NewBillServiceClient creates a client for the service at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	opts = clientOptions(opts)
	return &BillServiceClient{
		createBill:             connect.NewClient[CreateBillRequest, CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		inviteUsers:            connect.NewClient[InviteUsersRequest, InviteUsersResponse](httpClient, baseURL+BillServiceInviteUsersProcedure, opts...),
		respondToInvitation:    connect.NewClient[RespondToInvitationRequest, RespondToInvitationResponse](httpClient, baseURL+BillServiceRespondToInvitationProcedure, opts...),
		finalizeBill:           connect.NewClient[FinalizeBillRequest, FinalizeBillResponse](httpClient, baseURL+BillServiceFinalizeBillProcedure, opts...),
		markPaid:               connect.NewClient[MarkPaidRequest, MarkPaidResponse](httpClient, baseURL+BillServiceMarkPaidProcedure, opts...),
		checkBillStatus:        connect.NewClient[CheckBillStatusRequest, CheckBillStatusResponse](httpClient, baseURL+BillServiceCheckBillStatusProcedure, opts...),
		getBill:                connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		getBillByCode:          connect.NewClient[GetBillByCodeRequest, GetBillByCodeResponse](httpClient, baseURL+BillServiceGetBillByCodeProcedure, opts...),
		getBillStatus:          connect.NewClient[GetBillStatusRequest, GetBillStatusResponse](httpClient, baseURL+BillServiceGetBillStatusProcedure, opts...),
		listCreatedBills:       connect.NewClient[Empty, ListCreatedBillsResponse](httpClient, baseURL+BillServiceListCreatedBillsProcedure, opts...),
		listInvitedBills:       connect.NewClient[Empty, ListInvitedBillsResponse](httpClient, baseURL+BillServiceListInvitedBillsProcedure, opts...),
		listParticipatingBills: connect.NewClient[Empty, ListParticipatingBillsResponse](httpClient, baseURL+BillServiceListParticipatingBillsProcedure, opts...),
		listTemplates:          connect.NewClient[Empty, ListTemplatesResponse](httpClient, baseURL+BillServiceListTemplatesProcedure, opts...),
		listMonthlyBills:       connect.NewClient[Empty, ListMonthlyBillsResponse](httpClient, baseURL+BillServiceListMonthlyBillsProcedure, opts...),
	}
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) InviteUsers(ctx context.Context, req *connect.Request[InviteUsersRequest]) (*connect.Response[InviteUsersResponse], error) {
	return c.inviteUsers.CallUnary(ctx, req)
}

func (c *BillServiceClient) RespondToInvitation(ctx context.Context, req *connect.Request[RespondToInvitationRequest]) (*connect.Response[RespondToInvitationResponse], error) {
	return c.respondToInvitation.CallUnary(ctx, req)
}

func (c *BillServiceClient) FinalizeBill(ctx context.Context, req *connect.Request[FinalizeBillRequest]) (*connect.Response[FinalizeBillResponse], error) {
	return c.finalizeBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) MarkPaid(ctx context.Context, req *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *BillServiceClient) CheckBillStatus(ctx context.Context, req *connect.Request[CheckBillStatusRequest]) (*connect.Response[CheckBillStatusResponse], error) {
	return c.checkBillStatus.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBillByCode(ctx context.Context, req *connect.Request[GetBillByCodeRequest]) (*connect.Response[GetBillByCodeResponse], error) {
	return c.getBillByCode.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBillStatus(ctx context.Context, req *connect.Request[GetBillStatusRequest]) (*connect.Response[GetBillStatusResponse], error) {
	return c.getBillStatus.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListCreatedBills(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListCreatedBillsResponse], error) {
	return c.listCreatedBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListInvitedBills(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListInvitedBillsResponse], error) {
	return c.listInvitedBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListParticipatingBills(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListParticipatingBillsResponse], error) {
	return c.listParticipatingBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListTemplates(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListTemplatesResponse], error) {
	return c.listTemplates.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListMonthlyBills(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListMonthlyBillsResponse], error) {
	return c.listMonthlyBills.CallUnary(ctx, req)
}
