package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns hold canonical decimal strings, calendar dates are YYYY-MM-DD
// and timestamps are Unix seconds.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    bill_code TEXT NOT NULL UNIQUE,
    created_by TEXT NOT NULL,
    title TEXT NOT NULL,
    total_amount TEXT NOT NULL,
    bill_date TEXT NOT NULL,
    due_date TEXT,
    bill_type TEXT NOT NULL CHECK (bill_type IN ('one_time', 'monthly')),
    status TEXT NOT NULL CHECK (status IN ('template', 'draft', 'pending_responses', 'finalized', 'cancelled', 'paid')),
    next_due_date TEXT,
    is_template INTEGER NOT NULL DEFAULT 0,
    auto_invite_users INTEGER NOT NULL DEFAULT 0,
    parent_bill_id TEXT,
    recurrence_source_id TEXT,
    notes TEXT,
    finalized_at INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (parent_bill_id) REFERENCES bills(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS bill_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    item_name TEXT NOT NULL,
    item_description TEXT,
    quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    unit_price TEXT NOT NULL,
    total_price TEXT NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_invitations (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    invited_user_id TEXT NOT NULL,
    invited_by TEXT NOT NULL,
    proposed_amount TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected')),
    response_date INTEGER,
    created_at INTEGER NOT NULL,
    UNIQUE (bill_id, invited_user_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_participants (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount_owed TEXT NOT NULL,
    is_creator INTEGER NOT NULL DEFAULT 0,
    payment_status TEXT NOT NULL CHECK (payment_status IN ('pending', 'paid')),
    paid_at INTEGER,
    created_at INTEGER NOT NULL,
    UNIQUE (bill_id, user_id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bill_id TEXT NOT NULL,
    user_id TEXT,
    action TEXT NOT NULL,
    details TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_bills_created_by ON bills(created_by);
CREATE INDEX IF NOT EXISTS idx_bills_recurring ON bills(bill_type, is_template, status, next_due_date);
CREATE UNIQUE INDEX IF NOT EXISTS idx_bills_recurrence_source ON bills(recurrence_source_id) WHERE recurrence_source_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_bill_items_bill_id ON bill_items(bill_id);
CREATE INDEX IF NOT EXISTS idx_bill_invitations_user ON bill_invitations(invited_user_id, status);
CREATE INDEX IF NOT EXISTS idx_bill_participants_user ON bill_participants(user_id);
CREATE INDEX IF NOT EXISTS idx_bill_activity_log_bill_id ON bill_activity_log(bill_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
