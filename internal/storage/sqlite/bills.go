package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

var billFields = []string{
	"id", "bill_code", "created_by", "title", "total_amount", "bill_date", "due_date",
	"bill_type", "status", "next_due_date", "is_template", "auto_invite_users",
	"parent_bill_id", "recurrence_source_id", "notes", "finalized_at", "created_at", "updated_at",
}

// billColumns returns the bill column list qualified with alias.
func billColumns(alias string) string {
	cols := make([]string, len(billFields))
	for i, f := range billFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBill scans billFields followed by any extra destinations.
func scanBill(row rowScanner, extra ...any) (*models.Bill, error) {
	var (
		bill                      models.Bill
		billDate                  string
		dueDate, nextDueDate      sql.NullString
		parentID, sourceID, notes sql.NullString
		kind, status              string
	)
	dest := []any{
		&bill.ID, &bill.Code, &bill.CreatedBy, &bill.Title, &bill.TotalAmount, &billDate, &dueDate,
		&kind, &status, &nextDueDate, &bill.IsTemplate, &bill.AutoInvite,
		&parentID, &sourceID, &notes, &bill.FinalizedAt, &bill.CreatedAt, &bill.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if bill.BillDate, err = calendar.Parse(billDate); err != nil {
		return nil, err
	}
	if bill.DueDate, err = calendar.ParseOptional(dueDate.String); err != nil {
		return nil, err
	}
	if bill.NextDueDate, err = calendar.ParseOptional(nextDueDate.String); err != nil {
		return nil, err
	}
	bill.Kind = models.BillKind(kind)
	bill.Status = models.BillStatus(status)
	bill.ParentBillID = parentID.String
	bill.RecurrenceSourceID = sourceID.String
	bill.Notes = notes.String
	return &bill, nil
}

// nullString maps the empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullDate maps a nil date to NULL.
func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return calendar.Format(*t)
}

func (q queries) getBillWhere(ctx context.Context, where string, arg any) (*models.Bill, error) {
	row := q.q.QueryRowContext(ctx,
		"SELECT "+billColumns("b")+" FROM bills b WHERE "+where,
		arg,
	)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %v: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// GetBill retrieves a bill by ID.
func (q queries) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return q.getBillWhere(ctx, "b.id = ?", billID)
}

// GetBillByCode retrieves a bill by its shareable code.
func (q queries) GetBillByCode(ctx context.Context, code string) (*models.Bill, error) {
	return q.getBillWhere(ctx, "b.bill_code = ?", code)
}

func (q queries) listBills(ctx context.Context, query string, args ...any) ([]models.Bill, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// ListBillsByCreator returns the creator's bills with their invitation counts.
func (q queries) ListBillsByCreator(ctx context.Context, userID string) ([]models.BillSummary, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+billColumns("b")+`,
		       COUNT(i.id),
		       COUNT(CASE WHEN i.status = 'accepted' THEN 1 END),
		       COUNT(CASE WHEN i.status = 'rejected' THEN 1 END),
		       COUNT(CASE WHEN i.status = 'pending' THEN 1 END)
		FROM bills b
		LEFT JOIN bill_invitations i ON i.bill_id = b.id
		WHERE b.created_by = ?
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list created bills: %w", err)
	}
	defer rows.Close()

	var summaries []models.BillSummary
	for rows.Next() {
		var s models.BillSummary
		bill, err := scanBill(rows, &s.TotalInvitations, &s.AcceptedInvitations, &s.RejectedInvitations, &s.PendingInvitations)
		if err != nil {
			return nil, fmt.Errorf("failed to scan created bill: %w", err)
		}
		s.Bill = *bill
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate created bills: %w", err)
	}
	return summaries, nil
}

// ListInvitedBills returns bills with a pending invitation for userID.
func (q queries) ListInvitedBills(ctx context.Context, userID string) ([]models.InvitedBill, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+billColumns("b")+`, i.status, i.proposed_amount, i.created_at
		FROM bills b
		JOIN bill_invitations i ON i.bill_id = b.id
		WHERE i.invited_user_id = ? AND i.status = 'pending' AND b.is_template = 0
		ORDER BY i.created_at DESC, i.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invited bills: %w", err)
	}
	defer rows.Close()

	var bills []models.InvitedBill
	for rows.Next() {
		var (
			ib     models.InvitedBill
			status string
		)
		bill, err := scanBill(rows, &status, &ib.ProposedAmount, &ib.InvitedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invited bill: %w", err)
		}
		ib.Bill = *bill
		ib.InvitationStatus = models.InvitationStatus(status)
		bills = append(bills, ib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invited bills: %w", err)
	}
	return bills, nil
}

// ListParticipatingBills returns the bills where userID is a participant.
func (q queries) ListParticipatingBills(ctx context.Context, userID string) ([]models.ParticipatingBill, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+billColumns("b")+`, p.amount_owed, p.is_creator, p.payment_status, COALESCE(p.paid_at, 0)
		FROM bills b
		JOIN bill_participants p ON p.bill_id = b.id
		WHERE p.user_id = ?
		ORDER BY b.created_at DESC, b.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participating bills: %w", err)
	}
	defer rows.Close()

	var bills []models.ParticipatingBill
	for rows.Next() {
		var (
			pb     models.ParticipatingBill
			status string
		)
		bill, err := scanBill(rows, &pb.AmountOwed, &pb.IsCreator, &status, &pb.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participating bill: %w", err)
		}
		pb.Bill = *bill
		pb.PaymentStatus = models.PaymentStatus(status)
		bills = append(bills, pb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participating bills: %w", err)
	}
	return bills, nil
}

// ListTemplates returns the templates created by userID.
func (q queries) ListTemplates(ctx context.Context, userID string) ([]models.Bill, error) {
	return q.listBills(ctx,
		"SELECT "+billColumns("b")+" FROM bills b WHERE b.created_by = ? AND b.is_template = 1 ORDER BY b.created_at DESC, b.rowid DESC",
		userID,
	)
}

// ListMonthlyBills returns monthly bills where userID is the creator or a participant.
func (q queries) ListMonthlyBills(ctx context.Context, userID string) ([]models.MonthlyBill, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+billColumns("b")+`,
		       CASE WHEN b.created_by = ? THEN 'creator' ELSE 'participant' END,
		       p.amount_owed, COALESCE(p.payment_status, '')
		FROM bills b
		LEFT JOIN bill_participants p ON p.bill_id = b.id AND p.user_id = ?
		WHERE b.bill_type = 'monthly'
		  AND b.is_template = 0
		  AND (b.created_by = ? OR p.user_id = ?)
		ORDER BY b.next_due_date DESC, b.created_at DESC, b.rowid DESC`,
		userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly bills: %w", err)
	}
	defer rows.Close()

	var bills []models.MonthlyBill
	for rows.Next() {
		var (
			mb     models.MonthlyBill
			status string
		)
		bill, err := scanBill(rows, &mb.Role, &mb.AmountOwed, &status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monthly bill: %w", err)
		}
		mb.Bill = *bill
		mb.PaymentStatus = models.PaymentStatus(status)
		bills = append(bills, mb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly bills: %w", err)
	}
	return bills, nil
}

// ListDueRecurring returns the sources the recurrence sweep should spawn from.
func (q queries) ListDueRecurring(ctx context.Context, asOf time.Time) ([]models.Bill, error) {
	return q.listBills(ctx, `
		SELECT `+billColumns("b")+`
		FROM bills b
		WHERE b.bill_type = 'monthly'
		  AND b.is_template = 0
		  AND b.status = 'paid'
		  AND b.next_due_date IS NOT NULL
		  AND b.next_due_date <= ?
		  AND EXISTS (SELECT 1 FROM bills t WHERE t.id = b.parent_bill_id AND t.is_template = 1)
		  AND NOT EXISTS (SELECT 1 FROM bills s WHERE s.recurrence_source_id = b.id)
		ORDER BY b.next_due_date, b.created_at, b.rowid`,
		calendar.Format(asOf),
	)
}

// HasSuccessor reports whether a bill was spawned from sourceID.
func (q queries) HasSuccessor(ctx context.Context, sourceID string) (bool, error) {
	var exists bool
	err := q.q.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM bills WHERE recurrence_source_id = ?)",
		sourceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check successor: %w", err)
	}
	return exists, nil
}

// ListItems returns the line items of a bill in insertion order.
func (q queries) ListItems(ctx context.Context, billID string) ([]models.BillItem, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT id, bill_id, item_name, item_description, quantity, unit_price, total_price
		 FROM bill_items WHERE bill_id = ? ORDER BY rowid`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.BillItem
	for rows.Next() {
		var (
			item models.BillItem
			desc sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.BillID, &item.Name, &desc, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Description = desc.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// LockBill touches the bill row so that the transaction owns it until commit.
func (t *sqliteTx) LockBill(ctx context.Context, billID string) (*models.Bill, error) {
	res, err := t.q.ExecContext(ctx,
		"UPDATE bills SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock bill: %w", err)
	}
	if err := expectOne(res, "bill "+billID); err != nil {
		return nil, err
	}
	return t.GetBill(ctx, billID)
}

// CreateBill persists a new bill to the database.
func (t *sqliteTx) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO bills (id, bill_code, created_by, title, total_amount, bill_date, due_date,
		                    bill_type, status, next_due_date, is_template, auto_invite_users,
		                    parent_bill_id, recurrence_source_id, notes, finalized_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Code, bill.CreatedBy, bill.Title, bill.TotalAmount.String(),
		calendar.Format(bill.BillDate), nullDate(bill.DueDate),
		string(bill.Kind), string(bill.Status), nullDate(bill.NextDueDate),
		bill.IsTemplate, bill.AutoInvite,
		nullString(bill.ParentBillID), nullString(bill.RecurrenceSourceID), nullString(bill.Notes),
		bill.FinalizedAt, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// AddItems inserts line items for a bill. Item IDs are always freshly generated.
func (t *sqliteTx) AddItems(ctx context.Context, billID string, items []models.BillItem) error {
	for i := range items {
		item := &items[i]
		item.ID = uuid.New().String()
		item.BillID = billID

		_, err := t.q.ExecContext(ctx,
			`INSERT INTO bill_items (id, bill_id, item_name, item_description, quantity, unit_price, total_price)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, billID, item.Name, nullString(item.Description), item.Quantity,
			item.UnitPrice.String(), item.TotalPrice.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	return nil
}

// UpdateBillStatus sets the lifecycle status of a bill.
func (t *sqliteTx) UpdateBillStatus(ctx context.Context, billID string, status models.BillStatus) error {
	res, err := t.q.ExecContext(ctx,
		"UPDATE bills SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %w", err)
	}
	return expectOne(res, "bill "+billID)
}

// MarkBillFinalized sets the finalized status and timestamp.
func (t *sqliteTx) MarkBillFinalized(ctx context.Context, billID string, at int64) error {
	res, err := t.q.ExecContext(ctx,
		"UPDATE bills SET status = ?, finalized_at = ?, updated_at = ? WHERE id = ?",
		string(models.StatusFinalized), at, at, billID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize bill: %w", err)
	}
	return expectOne(res, "bill "+billID)
}

// SetNextDueDate updates the next due date of a monthly bill.
func (t *sqliteTx) SetNextDueDate(ctx context.Context, billID string, next *time.Time) error {
	res, err := t.q.ExecContext(ctx,
		"UPDATE bills SET next_due_date = ?, updated_at = ? WHERE id = ?",
		nullDate(next), time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update next due date: %w", err)
	}
	return expectOne(res, "bill "+billID)
}
