// Package sqlstore implements the ledger record store on a SQL database.
//
// Queries use $N placeholders, understood by both the postgres driver
// (github.com/lib/pq) and the sqlite driver (modernc.org/sqlite).
// Decimals and timestamps are stored as text, so that values are read back
// exactly whatever the database.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/abe"
	"github.com/shopspring/decimal"
)

var _ abe.Store = (*Store)(nil)

// Setting names.
const (
	PriceSetting     = "price"
	ValuationSetting = "valuation"
)

const schema = `
CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	payer TEXT NOT NULL,
	amount TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	position INTEGER PRIMARY KEY,
	payee TEXT NOT NULL,
	amount TEXT NOT NULL,
	source_id TEXT NOT NULL,
	revision TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_source_id ON transactions (source_id);
CREATE TABLE IF NOT EXISTS attributions (
	holder TEXT PRIMARY KEY,
	share TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pending_investments (
	source_id TEXT PRIMARY KEY,
	payer TEXT NOT NULL,
	amount TEXT NOT NULL,
	share TEXT NOT NULL,
	base TEXT NOT NULL,
	reason TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// Store is an abe.Store on a SQL database.
type Store struct {
	db          *sql.DB
	sharePlaces int32
}

// Option configures a Store.
type Option func(*Store)

// WithSharePlaces sets the number of decimals of the shares written in the
// attribution table, 10 by default.
func WithSharePlaces(places int32) Option {
	return func(s *Store) { s.sharePlaces = places }
}

// New returns a Store on db. Call Init to create the tables.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, sharePlaces: 10}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the tables if they do not exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(schema)
	return err
}

// PaymentIDs implements abe.Store.
func (s *Store) PaymentIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM payments`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Payment implements abe.Store.
func (s *Store) Payment(id string) (abe.Payment, error) {
	row := s.db.QueryRow(`SELECT id, name, payer, amount FROM payments WHERE id = $1`, id)

	var p abe.Payment
	var amount string
	if err := row.Scan(&p.ID, &p.Name, &p.Payer, &amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return abe.Payment{}, fmt.Errorf("payment %q not found", id)
		}
		return abe.Payment{}, err
	}
	var err error
	if p.Amount, err = parseDecimal("amount", amount); err != nil {
		return abe.Payment{}, err
	}
	if err := p.Validate(); err != nil {
		return abe.Payment{}, err
	}
	return p, nil
}

// AddPayment inserts a payment record.
func (s *Store) AddPayment(p abe.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO payments (id, name, payer, amount) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Payer, p.Amount.String())
	return err
}

// Price implements abe.Store.
func (s *Store) Price() (decimal.Decimal, error) { return s.setting(PriceSetting) }

// Valuation implements abe.Store.
func (s *Store) Valuation() (decimal.Decimal, error) { return s.setting(ValuationSetting) }

func (s *Store) setting(name string) (decimal.Decimal, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s is not set", abe.ErrMalformedRecord, name)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return parseDecimal(name, value)
}

// SetSetting sets a scalar setting, like the price or the valuation.
func (s *Store) SetSetting(name string, value decimal.Decimal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM settings WHERE name = $1`, name); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO settings (name, value) VALUES ($1, $2)`, name, value.String()); err != nil {
		return err
	}
	return tx.Commit()
}

// Attributions implements abe.Store.
func (s *Store) Attributions() (abe.Attributions, error) {
	rows, err := s.db.Query(`SELECT holder, share FROM attributions`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	attrs := make(abe.Attributions)
	for rows.Next() {
		var holder, share string
		if err := rows.Scan(&holder, &share); err != nil {
			return nil, err
		}
		if attrs[holder], err = parseDecimal("share of "+holder, share); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attrs, nil
}

// WriteAttributions implements abe.Store. The table is replaced in a single
// SQL transaction.
func (s *Store) WriteAttributions(attrs abe.Attributions) error {
	attrs = attrs.Round(s.sharePlaces)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM attributions`); err != nil {
		return fmt.Errorf("failed to clear attributions: %w", err)
	}
	for _, holder := range attrs.Holders() {
		if _, err := tx.Exec(`INSERT INTO attributions (holder, share) VALUES ($1, $2)`, holder, attrs[holder].String()); err != nil {
			return fmt.Errorf("failed to insert share of %s: %w", holder, err)
		}
	}
	return tx.Commit()
}

// RecordedSourceIDs implements abe.Store.
func (s *Store) RecordedSourceIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT source_id FROM transactions`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Transactions implements abe.Store.
func (s *Store) Transactions() ([]abe.Transaction, error) {
	rows, err := s.db.Query(`SELECT payee, amount, source_id, revision, created_at FROM transactions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make([]abe.Transaction, 0)
	for rows.Next() {
		var tx abe.Transaction
		var amount, createdAt string
		if err := rows.Scan(&tx.Payee, &amount, &tx.SourceID, &tx.Revision, &createdAt); err != nil {
			return nil, err
		}
		if tx.Amount, err = parseDecimal("amount", amount); err != nil {
			return nil, err
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("%w: invalid created_at %q", abe.ErrMalformedRecord, createdAt)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AppendTransactions implements abe.Store. Transactions are appended in a
// single SQL transaction.
func (s *Store) AppendTransactions(txs []abe.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var last int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position), 0) FROM transactions`).Scan(&last); err != nil {
		return err
	}
	for i, t := range txs {
		_, err := tx.Exec(`INSERT INTO transactions (position, payee, amount, source_id, revision, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			last+int64(i)+1, t.Payee, t.Amount.String(), t.SourceID, t.Revision, t.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to append transaction to %s: %w", t.Payee, err)
		}
	}
	return tx.Commit()
}

// PendingInvestment implements abe.Store.
func (s *Store) PendingInvestment() (*abe.PendingInvestment, error) {
	row := s.db.QueryRow(`SELECT source_id, payer, amount, share, base, reason, created_at FROM pending_investments`)

	var p abe.PendingInvestment
	var amount, share, createdAt string
	if err := row.Scan(&p.SourceID, &p.Payer, &amount, &share, &p.Base, &p.Reason, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var err error
	if p.Amount, err = parseDecimal("pending amount", amount); err != nil {
		return nil, err
	}
	if p.Share, err = parseDecimal("pending share", share); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("%w: invalid created_at %q", abe.ErrMalformedRecord, createdAt)
	}
	return &p, nil
}

// WritePendingInvestment implements abe.Store. It replaces any previous marker.
func (s *Store) WritePendingInvestment(p abe.PendingInvestment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM pending_investments`); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO pending_investments (source_id, payer, amount, share, base, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.SourceID, p.Payer, p.Amount.String(), p.Share.String(), p.Base, p.Reason, p.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ClearPendingInvestment implements abe.Store.
func (s *Store) ClearPendingInvestment() error {
	_, err := s.db.Exec(`DELETE FROM pending_investments`)
	return err
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s %q", abe.ErrMalformedRecord, field, value)
	}
	return d, nil
}
