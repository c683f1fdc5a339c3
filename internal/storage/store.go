// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// ErrNotFound is returned when a lookup or a guarded update matches no row.
var ErrNotFound = errors.New("not found")

// Queries are the read operations available both on the store and inside a transaction.
type Queries interface {
	// GetBill retrieves a bill by its ID.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// GetBillByCode retrieves a bill by its shareable code.
	GetBillByCode(ctx context.Context, code string) (*models.Bill, error)

	ListItems(ctx context.Context, billID string) ([]models.BillItem, error)
	ListInvitations(ctx context.Context, billID string) ([]models.Invitation, error)
	GetInvitation(ctx context.Context, billID, userID string) (*models.Invitation, error)
	CountInvitations(ctx context.Context, billID string) (models.InvitationCounts, error)
	ListParticipants(ctx context.Context, billID string) ([]models.Participant, error)
	GetParticipant(ctx context.Context, billID, userID string) (*models.Participant, error)
	ListActivity(ctx context.Context, billID string) ([]models.ActivityLogEntry, error)

	// ListBillsByCreator returns every bill created by userID, newest first.
	ListBillsByCreator(ctx context.Context, userID string) ([]models.BillSummary, error)

	// ListInvitedBills returns the bills where userID has a pending invitation.
	ListInvitedBills(ctx context.Context, userID string) ([]models.InvitedBill, error)

	// ListParticipatingBills returns the bills where userID is a participant.
	ListParticipatingBills(ctx context.Context, userID string) ([]models.ParticipatingBill, error)

	ListTemplates(ctx context.Context, userID string) ([]models.Bill, error)
	ListMonthlyBills(ctx context.Context, userID string) ([]models.MonthlyBill, error)

	// ListDueRecurring returns paid, non-template monthly bills whose next due date is
	// on or before asOf, whose template still exists, and which have no successor yet.
	ListDueRecurring(ctx context.Context, asOf time.Time) ([]models.Bill, error)

	// HasSuccessor reports whether a bill was already spawned from sourceID.
	HasSuccessor(ctx context.Context, sourceID string) (bool, error)

	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Tx is a single all-or-nothing unit of work.
type Tx interface {
	Queries

	// LockBill serializes the transaction on the bill row and returns the bill.
	// Concurrent transactions locking the same bill wait for this one to finish.
	LockBill(ctx context.Context, billID string) (*models.Bill, error)

	// CreateBill persists a new bill. The bill.ID, CreatedAt and UpdatedAt fields
	// are populated by the store.
	CreateBill(ctx context.Context, bill *models.Bill) error

	AddItems(ctx context.Context, billID string, items []models.BillItem) error
	UpdateBillStatus(ctx context.Context, billID string, status models.BillStatus) error
	MarkBillFinalized(ctx context.Context, billID string, at int64) error
	SetNextDueDate(ctx context.Context, billID string, next *time.Time) error

	// UpsertInvitation inserts or replaces the invitation keyed by
	// (BillID, InvitedUserID), resetting it to pending.
	UpsertInvitation(ctx context.Context, inv *models.Invitation) error

	// RespondToInvitation resolves a pending invitation. It returns ErrNotFound when
	// no pending invitation exists for (billID, userID).
	RespondToInvitation(ctx context.Context, billID, userID string, status models.InvitationStatus, at int64) error

	DeleteParticipants(ctx context.Context, billID string) error
	InsertParticipant(ctx context.Context, p *models.Participant) error

	// MarkParticipantPaid returns ErrNotFound when (billID, userID) is not a participant.
	MarkParticipantPaid(ctx context.Context, billID, userID string, at int64) error

	AppendActivity(ctx context.Context, entry *models.ActivityLogEntry) error
	UpsertUser(ctx context.Context, user *models.User) error
}

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engines.
type Store interface {
	Queries

	// InTx runs fn in a transaction, committing when fn returns nil and rolling
	// back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// UpsertUser records the display name of a principal.
	UpsertUser(ctx context.Context, user *models.User) error

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
