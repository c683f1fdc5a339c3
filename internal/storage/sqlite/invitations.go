package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

const invitationColumns = "id, bill_id, invited_user_id, invited_by, proposed_amount, status, COALESCE(response_date, 0), created_at"

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var (
		inv    models.Invitation
		status string
	)
	if err := row.Scan(&inv.ID, &inv.BillID, &inv.InvitedUserID, &inv.InvitedBy,
		&inv.ProposedAmount, &status, &inv.RespondedAt, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.Status = models.InvitationStatus(status)
	return &inv, nil
}

// ListInvitations returns all invitations of a bill in invitation order.
func (q queries) ListInvitations(ctx context.Context, billID string) ([]models.Invitation, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT "+invitationColumns+" FROM bill_invitations WHERE bill_id = ? ORDER BY created_at, rowid",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}
	return invitations, nil
}

// GetInvitation retrieves the invitation for (billID, userID) in any status.
func (q queries) GetInvitation(ctx context.Context, billID, userID string) (*models.Invitation, error) {
	row := q.q.QueryRowContext(ctx,
		"SELECT "+invitationColumns+" FROM bill_invitations WHERE bill_id = ? AND invited_user_id = ?",
		billID, userID,
	)
	inv, err := scanInvitation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invitation for %s on bill %s: %w", userID, billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// CountInvitations aggregates invitation statuses for a bill.
func (q queries) CountInvitations(ctx context.Context, billID string) (models.InvitationCounts, error) {
	var c models.InvitationCounts
	err := q.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN status = 'accepted' THEN 1 END),
		       COUNT(CASE WHEN status = 'rejected' THEN 1 END),
		       COUNT(CASE WHEN status = 'pending' THEN 1 END)
		FROM bill_invitations WHERE bill_id = ?`,
		billID,
	).Scan(&c.Total, &c.Accepted, &c.Rejected, &c.Pending)
	if err != nil {
		return c, fmt.Errorf("failed to count invitations: %w", err)
	}
	return c, nil
}

// UpsertInvitation inserts or replaces the invitation keyed by (bill_id, invited_user_id).
// A replaced invitation goes back to pending with the new proposed amount; its
// first response timestamp is kept.
func (t *sqliteTx) UpsertInvitation(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	inv.Status = models.InvitationPending

	_, err := t.q.ExecContext(ctx, `
		INSERT INTO bill_invitations (id, bill_id, invited_user_id, invited_by, proposed_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (bill_id, invited_user_id) DO UPDATE SET
			invited_by = excluded.invited_by,
			proposed_amount = excluded.proposed_amount,
			status = excluded.status`,
		inv.ID, inv.BillID, inv.InvitedUserID, inv.InvitedBy, inv.ProposedAmount.String(),
		string(models.InvitationPending), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert invitation: %w", err)
	}
	return nil
}

// RespondToInvitation resolves the pending invitation for (billID, userID).
func (t *sqliteTx) RespondToInvitation(ctx context.Context, billID, userID string, status models.InvitationStatus, at int64) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE bill_invitations
		SET status = ?, response_date = COALESCE(response_date, ?)
		WHERE bill_id = ? AND invited_user_id = ? AND status = ?`,
		string(status), at, billID, userID, string(models.InvitationPending),
	)
	if err != nil {
		return fmt.Errorf("failed to respond to invitation: %w", err)
	}
	return expectOne(res, fmt.Sprintf("pending invitation for %s on bill %s", userID, billID))
}
