package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcarver/ledgerlink/internal/account"
	"github.com/jcarver/ledgerlink/internal/money"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, user_id, enrollment_id, provider_account_id, name,
// kind, current_balance, available_balance, limit_amount, currency, last_synced_at,
// created_at, updated_at
func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var kindStr string

	var current, available, limit sql.NullString

	var lastSyncedAt sql.NullTime

	if err := s.Scan(
		&a.ID, &a.UserID, &a.EnrollmentID, &a.ProviderAccountID, &a.Name,
		&kindStr, &current, &available, &limit, &a.Currency, &lastSyncedAt,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Kind = account.Kind(kindStr)

	if lastSyncedAt.Valid {
		a.LastSyncedAt = &lastSyncedAt.Time
	}

	var err error

	if a.CurrentBalance, err = scanMoney(current, a.Currency); err != nil {
		return nil, err
	}

	if a.AvailableBalance, err = scanMoney(available, a.Currency); err != nil {
		return nil, err
	}

	if a.LimitAmount, err = scanMoney(limit, a.Currency); err != nil {
		return nil, err
	}

	return &a, nil
}

func scanMoney(v sql.NullString, currency string) (*money.Money, error) {
	if !v.Valid {
		return nil, nil
	}

	m, err := money.NewFromString(v.String, currency)
	if err != nil {
		return nil, fmt.Errorf("scanning stored amount: %w", err)
	}

	return &m, nil
}

func amountArg(m *money.Money) *decimal.Decimal {
	if m == nil {
		return nil
	}

	d := m.Amount()

	return &d
}

const selectAccountColumns = `
	id, user_id, enrollment_id, provider_account_id, name, kind,
	current_balance, available_balance, limit_amount, currency, last_synced_at,
	created_at, updated_at
`

// Upsert inserts or refreshes an account keyed by (enrollment_id,
// provider_account_id). Re-syncing the same provider account never
// duplicates a row.
func (s *Store) Upsert(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (user_id, enrollment_id, provider_account_id, name, kind,
			current_balance, available_balance, limit_amount, currency, last_synced_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (enrollment_id, provider_account_id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			current_balance = COALESCE(EXCLUDED.current_balance, accounts.current_balance),
			available_balance = COALESCE(EXCLUDED.available_balance, accounts.available_balance),
			limit_amount = COALESCE(EXCLUDED.limit_amount, accounts.limit_amount),
			currency = EXCLUDED.currency,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = NOW()
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.UserID,
		a.EnrollmentID,
		a.ProviderAccountID,
		a.Name,
		a.Kind,
		amountArg(a.CurrentBalance),
		amountArg(a.AvailableBalance),
		amountArg(a.LimitAmount),
		a.Currency,
		a.LastSyncedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting account: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

// ListByEnrollment loads the enrollment's accounts directly, never by
// filtering a global account list.
func (s *Store) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE enrollment_id = $1 ORDER BY created_at`

	return s.list(ctx, query, enrollmentID)
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at`

	return s.list(ctx, query, userID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*account.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateBalances refreshes the balance snapshot after a provider fetch.
// Nil values leave the stored balance untouched rather than nulling it out.
func (s *Store) UpdateBalances(ctx context.Context, id uuid.UUID, current, available *money.Money, syncedAt time.Time) error {
	query := `
		UPDATE accounts
		SET current_balance = COALESCE($2, current_balance),
			available_balance = COALESCE($3, available_balance),
			last_synced_at = $4,
			updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id, amountArg(current), amountArg(available), syncedAt)
	if err != nil {
		return fmt.Errorf("updating account balances: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}

	return nil
}
