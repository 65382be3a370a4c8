/*
Package sqlite provides a SQLite-backed customer record Repository.

PURPOSE:
  Normalized relational storage for deployments that outgrow the
  file-per-record layout. The same patterns apply to PostgreSQL with minor
  dialect changes.

SCHEMA:
  customers:    identity, previous balance, optimistic version
  items:        per-customer rate table
  transactions: rent/return events; seq preserves recorded order
  payments:     payment history with approval status

ORDERING:
  The transactions.seq column preserves the order events were recorded in.
  Same-day events must replay in recorded order for the accrual walk to be
  deterministic, so Load always orders by seq, never by date alone.

CONCURRENCY:
  WAL mode plus a store-level mutex; Save runs the version check and the
  full snapshot write in one database transaction.

SEE ALSO:
  - rental/repository.go: the contract
  - store/jsonfile: the file-per-record implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

type Repository struct {
	db *sql.DB
	mu sync.Mutex
}

var _ rental.Repository = (*Repository)(nil)

// New opens (and migrates) a SQLite database. Use ":memory:" for tests.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return repo, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mobile TEXT,
		address TEXT,
		previous_balance TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS items (
		customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		daily_rate TEXT NOT NULL,
		PRIMARY KEY (customer_id, name)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		item TEXT NOT NULL,
		qty INTEGER NOT NULL,
		PRIMARY KEY (customer_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_customer_date
		ON transactions(customer_id, date);

	CREATE TABLE IF NOT EXISTS payments (
		customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		date TEXT,
		amount TEXT NOT NULL,
		method TEXT,
		reference TEXT,
		notes TEXT,
		status TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (customer_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_payments_status
		ON payments(status);
	`
	_, err := r.db.Exec(schema)
	return err
}

// =============================================================================
// LOAD
// =============================================================================

func (r *Repository) Load(ctx context.Context, id string) (billing.CustomerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, id)
}

func (r *Repository) load(ctx context.Context, id string) (billing.CustomerRecord, error) {
	var record billing.CustomerRecord
	var prevBalance string

	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, mobile, address, previous_balance, version FROM customers WHERE id = ?`, id)
	err := row.Scan(&record.ID, &record.Name, &record.Mobile, &record.Address, &prevBalance, &record.Version)
	if err == sql.ErrNoRows {
		return billing.CustomerRecord{}, billing.ErrCustomerNotFound
	}
	if err != nil {
		return billing.CustomerRecord{}, fmt.Errorf("load customer %s: %w", id, err)
	}
	record.PreviousBalance = parseDecimal(prevBalance)

	items, err := r.db.QueryContext(ctx,
		`SELECT name, daily_rate FROM items WHERE customer_id = ? ORDER BY name`, id)
	if err != nil {
		return billing.CustomerRecord{}, fmt.Errorf("load items: %w", err)
	}
	defer items.Close()
	for items.Next() {
		var item billing.Item
		var rate string
		if err := items.Scan(&item.Name, &rate); err != nil {
			return billing.CustomerRecord{}, err
		}
		item.DailyRate = parseDecimal(rate)
		record.Items = append(record.Items, item)
	}
	if err := items.Err(); err != nil {
		return billing.CustomerRecord{}, err
	}

	txs, err := r.db.QueryContext(ctx,
		`SELECT date, item, qty FROM transactions WHERE customer_id = ? ORDER BY seq`, id)
	if err != nil {
		return billing.CustomerRecord{}, fmt.Errorf("load transactions: %w", err)
	}
	defer txs.Close()
	for txs.Next() {
		var dateStr string
		var event billing.TransactionEvent
		if err := txs.Scan(&dateStr, &event.Item, &event.Qty); err != nil {
			return billing.CustomerRecord{}, err
		}
		date, err := billing.ParseDate(dateStr)
		if err != nil {
			return billing.CustomerRecord{}, fmt.Errorf("transaction date: %w", err)
		}
		event.Date = date
		record.Transactions = append(record.Transactions, event)
	}
	if err := txs.Err(); err != nil {
		return billing.CustomerRecord{}, err
	}

	pays, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount, method, reference, notes, status FROM payments WHERE customer_id = ? ORDER BY seq`, id)
	if err != nil {
		return billing.CustomerRecord{}, fmt.Errorf("load payments: %w", err)
	}
	defer pays.Close()
	for pays.Next() {
		var p billing.Payment
		var dateStr, amount, status sql.NullString
		var method, reference, notes sql.NullString
		if err := pays.Scan(&p.ID, &dateStr, &amount, &method, &reference, &notes, &status); err != nil {
			return billing.CustomerRecord{}, err
		}
		p.Amount = parseDecimal(amount.String)
		p.Method = method.String
		p.Reference = reference.String
		p.Notes = notes.String
		p.Status = billing.PaymentStatus(status.String)
		if dateStr.Valid && dateStr.String != "" {
			if date, err := billing.ParseDate(dateStr.String); err == nil {
				p.Date = date
			}
		}
		record.PaymentHistory = append(record.PaymentHistory, p)
	}
	if err := pays.Err(); err != nil {
		return billing.CustomerRecord{}, err
	}

	return record, nil
}

// =============================================================================
// SAVE - full snapshot write with optimistic version check
// =============================================================================

func (r *Repository) Save(ctx context.Context, record *billing.CustomerRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record has no ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM customers WHERE id = ?`, record.ID).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		// New record.
	case err != nil:
		return fmt.Errorf("version check: %w", err)
	case current != record.Version:
		return &billing.VersionConflictError{
			CustomerID: record.ID,
			Expected:   record.Version,
			Actual:     current,
		}
	}

	next := record.Version + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO customers (id, name, mobile, address, previous_balance, version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			mobile = excluded.mobile,
			address = excluded.address,
			previous_balance = excluded.previous_balance,
			version = excluded.version`,
		record.ID, record.Name, record.Mobile, record.Address,
		record.PreviousBalance.String(), next)
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}

	// Child rows are a projection of the snapshot: replace them wholesale.
	for _, table := range []string{"items", "transactions", "payments"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE customer_id = ?`, record.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, item := range record.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (customer_id, name, daily_rate) VALUES (?, ?, ?)`,
			record.ID, item.Name, item.DailyRate.String()); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
	}

	for seq, event := range record.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (customer_id, seq, date, item, qty) VALUES (?, ?, ?, ?, ?)`,
			record.ID, seq, event.Date.String(), event.Item, event.Qty); err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
	}

	for seq, p := range record.PaymentHistory {
		var dateStr string
		if !p.Date.IsZero() {
			dateStr = p.Date.String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payments (customer_id, seq, id, date, amount, method, reference, notes, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, seq, p.ID, dateStr, p.Amount.String(), p.Method, p.Reference, p.Notes, string(p.Status)); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	record.Version = next
	return nil
}

// =============================================================================
// LIST
// =============================================================================

func (r *Repository) List(ctx context.Context) ([]billing.CustomerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]billing.CustomerRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
