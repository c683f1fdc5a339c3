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

const participantColumns = "id, bill_id, user_id, amount_owed, is_creator, payment_status, COALESCE(paid_at, 0), created_at"

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var (
		p      models.Participant
		status string
	)
	if err := row.Scan(&p.ID, &p.BillID, &p.UserID, &p.AmountOwed, &p.IsCreator,
		&status, &p.PaidAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.PaymentStatus = models.PaymentStatus(status)
	return &p, nil
}

// ListParticipants returns a bill's participants, creator first.
func (q queries) ListParticipants(ctx context.Context, billID string) ([]models.Participant, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM bill_participants WHERE bill_id = ? ORDER BY is_creator DESC, rowid",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// GetParticipant retrieves the participant row for (billID, userID).
func (q queries) GetParticipant(ctx context.Context, billID, userID string) (*models.Participant, error) {
	row := q.q.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM bill_participants WHERE bill_id = ? AND user_id = ?",
		billID, userID,
	)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s on bill %s: %w", userID, billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// DeleteParticipants removes the whole participant set of a bill.
func (t *sqliteTx) DeleteParticipants(ctx context.Context, billID string) error {
	if _, err := t.q.ExecContext(ctx, "DELETE FROM bill_participants WHERE bill_id = ?", billID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return nil
}

// InsertParticipant adds one participant row.
func (t *sqliteTx) InsertParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentPending
	}

	var paidAt any
	if p.PaidAt != 0 {
		paidAt = p.PaidAt
	}

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO bill_participants (id, bill_id, user_id, amount_owed, is_creator, payment_status, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.BillID, p.UserID, p.AmountOwed.String(), p.IsCreator, string(p.PaymentStatus), paidAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// MarkParticipantPaid records a participant's payment.
func (t *sqliteTx) MarkParticipantPaid(ctx context.Context, billID, userID string, at int64) error {
	res, err := t.q.ExecContext(ctx,
		"UPDATE bill_participants SET payment_status = ?, paid_at = ? WHERE bill_id = ? AND user_id = ?",
		string(models.PaymentPaid), at, billID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark participant paid: %w", err)
	}
	return expectOne(res, fmt.Sprintf("participant %s on bill %s", userID, billID))
}
