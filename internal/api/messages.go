package api

import (
	"github.com/shopspring/decimal"
)

// Empty is the request of procedures that only need the caller's identity.
type Empty struct{}

type Item struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"item_name"`
	Description string          `json:"item_description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type Bill struct {
	ID              string          `json:"id"`
	Code            string          `json:"bill_code"`
	CreatedBy       string          `json:"created_by"`
	Title           string          `json:"title"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BillDate        string          `json:"bill_date"`
	DueDate         string          `json:"due_date,omitempty"`
	BillType        string          `json:"bill_type"`
	Status          string          `json:"status"`
	NextDueDate     string          `json:"next_due_date,omitempty"`
	IsTemplate      bool            `json:"is_template"`
	AutoInviteUsers bool            `json:"auto_invite_users"`
	ParentBillID    string          `json:"parent_bill_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	FinalizedAt     int64           `json:"finalized_at,omitempty"`
	CreatedAt       int64           `json:"created_at"`
	UpdatedAt       int64           `json:"updated_at"`
}

type Invitation struct {
	ID             string          `json:"id"`
	BillID         string          `json:"bill_id"`
	InvitedUserID  string          `json:"invited_user_id"`
	InvitedBy      string          `json:"invited_by"`
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
	Status         string          `json:"status"`
	ResponseDate   int64           `json:"response_date,omitempty"`
	CreatedAt      int64           `json:"created_at"`
}

type Participant struct {
	UserID        string          `json:"user_id"`
	AmountOwed    decimal.Decimal `json:"amount_owed"`
	IsCreator     bool            `json:"is_creator"`
	PaymentStatus string          `json:"payment_status"`
	PaidAt        int64           `json:"paid_date,omitempty"`
}

type ActivityEntry struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	CreatedAt int64  `json:"created_at"`
}

type Progress struct {
	Participants int             `json:"participants"`
	Paid         int             `json:"paid"`
	Unpaid       int             `json:"unpaid"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

type InvitationCounts struct {
	Total    int `json:"total_invitations"`
	Accepted int `json:"accepted_invitations"`
	Rejected int `json:"rejected_invitations"`
	Pending  int `json:"pending_invitations"`
}

// BillService

type CreateBillRequest struct {
	Title           string          `json:"title"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BillDate        string          `json:"bill_date"`
	DueDate         string          `json:"due_date,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []Item          `json:"items,omitempty"`
	BillType        string          `json:"bill_type,omitempty"`
	AutoInviteUsers bool            `json:"auto_invite_users,omitempty"`
	IsTemplate      bool            `json:"is_template,omitempty"`
}

type CreateBillResponse struct {
	Bill  Bill   `json:"bill"`
	Items []Item `json:"items"`
}

type Invitee struct {
	UserID         string          `json:"user_id"`
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
}

type InviteUsersRequest struct {
	BillID      string    `json:"bill_id"`
	Invitations []Invitee `json:"invitations"`
}

type InviteUsersResponse struct {
	BillID  string `json:"bill_id"`
	Status  string `json:"status"`
	Invited int    `json:"invited"`
}

type RespondToInvitationRequest struct {
	BillID string `json:"bill_id"`
	Action string `json:"action"`
}

type RespondToInvitationResponse struct {
	BillID        string `json:"billId"`
	Status        string `json:"status"`
	AutoFinalized bool   `json:"autoFinalized"`
}

type FinalizeBillRequest struct {
	BillID string `json:"bill_id"`
}

type Share struct {
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	IsCreator bool            `json:"is_creator"`
}

type FinalizeBillResponse struct {
	BillID         string          `json:"bill_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Participants   int             `json:"participants"`
	CreatorPays    decimal.Decimal `json:"creator_pays"`
	RejectedAmount decimal.Decimal `json:"rejected_amount"`
	Shares         []Share         `json:"shares"`
}

type MarkPaidRequest struct {
	BillID string `json:"bill_id"`
	// UserID defaults to the caller.
	UserID string `json:"user_id,omitempty"`
}

type MarkPaidResponse struct {
	BillID      string   `json:"bill_id"`
	UserID      string   `json:"user_id"`
	Status      string   `json:"status"`
	AlreadyPaid bool     `json:"already_paid"`
	Progress    Progress `json:"progress"`
}

type CheckBillStatusRequest struct {
	BillID string `json:"bill_id"`
}

type CheckBillStatusResponse struct {
	BillID  string `json:"bill_id"`
	Status  string `json:"status"`
	Updated bool   `json:"updated"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill         Bill            `json:"bill"`
	Items        []Item          `json:"items"`
	Invitations  []Invitation    `json:"invitations"`
	Participants []Participant   `json:"participants"`
	Activity     []ActivityEntry `json:"activity"`
	Progress     Progress        `json:"progress"`
}

type GetBillByCodeRequest struct {
	Code string `json:"bill_code"`
}

type GetBillByCodeResponse struct {
	Bill Bill `json:"bill"`
}

type GetBillStatusRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillStatusResponse struct {
	Bill         Bill             `json:"bill"`
	Counts       InvitationCounts `json:"counts"`
	MyInvitation *Invitation      `json:"my_invitation,omitempty"`
	Invitations  []Invitation     `json:"invitations,omitempty"`
}

type CreatedBill struct {
	Bill
	InvitationCounts
}

type ListCreatedBillsResponse struct {
	Bills []CreatedBill `json:"bills"`
}

type InvitedBill struct {
	Bill
	InvitationStatus string          `json:"invitation_status"`
	ProposedAmount   decimal.Decimal `json:"proposed_amount"`
	InvitedAt        int64           `json:"invited_at"`
}

type ListInvitedBillsResponse struct {
	Bills []InvitedBill `json:"bills"`
}

type ParticipatingBill struct {
	Bill
	AmountOwed    decimal.Decimal `json:"amount_owed"`
	IsCreator     bool            `json:"is_creator_participant"`
	PaymentStatus string          `json:"payment_status"`
	PaidAt        int64           `json:"paid_date,omitempty"`
}

type ListParticipatingBillsResponse struct {
	Bills []ParticipatingBill `json:"bills"`
}

type ListTemplatesResponse struct {
	Templates []Bill `json:"templates"`
}

type MonthlyBill struct {
	Bill
	Role          string           `json:"user_role"`
	AmountOwed    *decimal.Decimal `json:"amount_owed,omitempty"`
	PaymentStatus string           `json:"payment_status,omitempty"`
}

type ListMonthlyBillsResponse struct {
	Bills []MonthlyBill `json:"bills"`
}

// RecurrenceService

type InstantiateTemplateRequest struct {
	TemplateID string `json:"template_id"`
	BillDate   string `json:"bill_date"`
	DueDate    string `json:"due_date,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type InstantiateTemplateResponse struct {
	Bill        Bill         `json:"bill"`
	Items       []Item       `json:"items"`
	Invitations []Invitation `json:"invitations"`
}

type SweepRecurringRequest struct {
	// AsOf is a YYYY-MM-DD date; empty means today.
	AsOf string `json:"as_of,omitempty"`
}

type SweepRecurringResponse struct {
	ProcessedCount int      `json:"processedCount"`
	SkippedCount   int      `json:"skippedCount"`
	FailedCount    int      `json:"failedCount"`
	BillIDs        []string `json:"billIds"`
}
