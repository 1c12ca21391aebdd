package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/money"
	"github.com/jcarver/ledgerlink/internal/transaction"
)

// chunkSize bounds the number of upserts grouped into one database
// transaction during a batch sync.
const chunkSize = 50

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

// Expected column order: id, user_id, account_id, provider_transaction_id, amount,
// currency, date, name, merchant_name, category, category_confidence, category_source,
// is_transfer, is_pending, note, created_at, updated_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var amountStr, currency string

	var merchantName, category, categorySource, note sql.NullString

	var confidence sql.NullFloat64

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.ProviderTransactionID, &amountStr,
		&currency, &tx.Date, &tx.Name, &merchantName, &category, &confidence, &categorySource,
		&tx.IsTransfer, &tx.IsPending, &note,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	amount, err := money.NewFromString(amountStr, currency)
	if err != nil {
		return nil, fmt.Errorf("scanning stored amount: %w", err)
	}

	tx.Amount = amount

	if merchantName.Valid {
		tx.MerchantName = &merchantName.String
	}

	if category.Valid {
		tx.Category = &category.String
	}

	if note.Valid {
		tx.Note = &note.String
	}

	if categorySource.Valid {
		src := transaction.CategorySource(categorySource.String)
		tx.CategorySource = &src
	}

	if confidence.Valid {
		score, err := money.NewConfidenceScore(confidence.Float64)
		if err != nil {
			return nil, fmt.Errorf("scanning stored confidence: %w", err)
		}

		tx.CategoryConfidence = &score
	}

	return &tx, nil
}

const selectTransactionColumns = `
	id, user_id, account_id, provider_transaction_id, amount, currency, date, name,
	merchant_name, category, category_confidence, category_source,
	is_transfer, is_pending, note, created_at, updated_at
`

// upsertQuery is keyed by (account_id, provider_transaction_id) so replaying
// a provider payload is a no-op update, never a duplicate row. Rows a user
// has re-categorized keep their category fields and transfer flag.
const upsertQuery = `
	INSERT INTO transactions (user_id, account_id, provider_transaction_id, amount, currency,
		date, name, merchant_name, category, category_confidence, category_source,
		is_transfer, is_pending, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	ON CONFLICT (account_id, provider_transaction_id) DO UPDATE SET
		amount = EXCLUDED.amount,
		currency = EXCLUDED.currency,
		date = EXCLUDED.date,
		name = EXCLUDED.name,
		merchant_name = COALESCE(EXCLUDED.merchant_name, transactions.merchant_name),
		category = CASE WHEN transactions.category_source = 'user'
			THEN transactions.category ELSE COALESCE(EXCLUDED.category, transactions.category) END,
		category_confidence = CASE WHEN transactions.category_source = 'user'
			THEN transactions.category_confidence ELSE EXCLUDED.category_confidence END,
		category_source = CASE WHEN transactions.category_source = 'user'
			THEN transactions.category_source ELSE COALESCE(EXCLUDED.category_source, transactions.category_source) END,
		is_transfer = CASE WHEN transactions.category_source = 'user'
			THEN transactions.is_transfer ELSE EXCLUDED.is_transfer END,
		is_pending = EXCLUDED.is_pending,
		updated_at = NOW()
`

func upsertArgs(p transaction.UpsertParams) []any {
	var confidence *float64

	if p.CategoryConfidence != nil {
		v := p.CategoryConfidence.Value()
		confidence = &v
	}

	amount := p.Amount.Amount()

	return []any{
		p.UserID,
		p.AccountID,
		p.ProviderTransactionID,
		amount,
		p.Amount.Currency(),
		p.Date,
		p.Name,
		p.MerchantName,
		p.Category,
		confidence,
		p.CategorySource,
		p.IsTransfer,
		p.IsPending,
	}
}

// Upsert writes a single mapped transaction.
func (s *Store) Upsert(ctx context.Context, p transaction.UpsertParams) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, upsertArgs(p)...); err != nil {
		return fmt.Errorf("upserting transaction: %w", err)
	}

	return nil
}

// BatchUpsert writes mapped transactions in chunks of 50. Each chunk commits
// as one database transaction; inside a chunk every item runs under a
// savepoint, so one bad row is counted as failed without poisoning its
// siblings. A chunk that fails to even begin counts all its items as failed
// and later chunks still run.
func (s *Store) BatchUpsert(ctx context.Context, params []transaction.UpsertParams) (transaction.BatchResult, error) {
	var result transaction.BatchResult

	for start := 0; start < len(params); start += chunkSize {
		end := min(start+chunkSize, len(params))

		chunk := params[start:end]

		chunkResult, err := s.upsertChunk(ctx, chunk)
		if err != nil {
			slog.Error("transaction chunk failed",
				"from", start, "size", len(chunk), "error", err)

			result.Failed += len(chunk)

			continue
		}

		result = result.Add(chunkResult)
	}

	return result, nil
}

func (s *Store) upsertChunk(ctx context.Context, chunk []transaction.UpsertParams) (transaction.BatchResult, error) {
	var result transaction.BatchResult

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck

	for _, p := range chunk {
		if _, err := dbTx.ExecContext(ctx, `SAVEPOINT upsert_item`); err != nil {
			return result, fmt.Errorf("creating savepoint: %w", err)
		}

		if _, err := dbTx.ExecContext(ctx, upsertQuery, upsertArgs(p)...); err != nil {
			slog.Error("transaction upsert failed",
				"provider_transaction_id", p.ProviderTransactionID,
				"account_id", p.AccountID,
				"error", err)

			result.Failed++

			if _, err := dbTx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT upsert_item`); err != nil {
				return result, fmt.Errorf("rolling back savepoint: %w", err)
			}

			continue
		}

		if _, err := dbTx.ExecContext(ctx, `RELEASE SAVEPOINT upsert_item`); err != nil {
			return result, fmt.Errorf("releasing savepoint: %w", err)
		}

		result.Succeeded++
	}

	if err := dbTx.Commit(); err != nil {
		return transaction.BatchResult{}, fmt.Errorf("committing chunk: %w", err)
	}

	return result, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions WHERE account_id = $1 ORDER BY date DESC, provider_transaction_id`

	return s.list(ctx, query, accountID)
}

// ListByUser returns the user's transactions in [from, to], newest first.
func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, provider_transaction_id`

	return s.list(ctx, query, userID, from, to)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return transactions, nil
}
