package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// GetUser retrieves a user by ID.
func (q queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, display_name, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	err := q.q.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpsertUser records a user inside a transaction.
func (t *sqliteTx) UpsertUser(ctx context.Context, user *models.User) error {
	return upsertUser(ctx, t.q, user)
}

// upsertUser inserts the user or refreshes its display name.
func upsertUser(ctx context.Context, q querier, user *models.User) error {
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			updated_at = excluded.updated_at
	`

	_, err := q.ExecContext(ctx, query,
		user.ID,
		user.DisplayName,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}
