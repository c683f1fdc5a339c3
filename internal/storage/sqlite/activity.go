package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// ListActivity returns a bill's activity log in append order.
func (q queries) ListActivity(ctx context.Context, billID string) ([]models.ActivityLogEntry, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT id, bill_id, user_id, action, details, created_at FROM bill_activity_log WHERE bill_id = ? ORDER BY id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityLogEntry
	for rows.Next() {
		var (
			e      models.ActivityLogEntry
			userID sql.NullString
			action string
		)
		if err := rows.Scan(&e.ID, &e.BillID, &userID, &action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		e.UserID = userID.String
		e.Action = models.ActivityAction(action)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}
	return entries, nil
}

// AppendActivity appends an entry to the activity log.
func (t *sqliteTx) AppendActivity(ctx context.Context, entry *models.ActivityLogEntry) error {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	res, err := t.q.ExecContext(ctx,
		"INSERT INTO bill_activity_log (bill_id, user_id, action, details, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.BillID, nullString(entry.UserID), string(entry.Action), entry.Details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}
