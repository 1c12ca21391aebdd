package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/enrollment"
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

// Expected column order: id, user_id, encrypted_access_token, provider_enrollment_id,
// institution_name, status, last_synced_date, last_synced_at, created_at, updated_at
func scanEnrollment(s scanner) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment

	var statusStr string

	var institutionName sql.NullString

	var lastSyncedDate, lastSyncedAt sql.NullTime

	if err := s.Scan(
		&e.ID, &e.UserID, &e.EncryptedAccessToken, &e.ProviderEnrollmentID,
		&institutionName, &statusStr, &lastSyncedDate, &lastSyncedAt,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Status = enrollment.Status(statusStr)

	if institutionName.Valid {
		e.InstitutionName = &institutionName.String
	}

	if lastSyncedDate.Valid {
		e.LastSyncedDate = &lastSyncedDate.Time
	}

	if lastSyncedAt.Valid {
		e.LastSyncedAt = &lastSyncedAt.Time
	}

	return &e, nil
}

const selectEnrollmentColumns = `
	id, user_id, encrypted_access_token, provider_enrollment_id,
	institution_name, status, last_synced_date, last_synced_at, created_at, updated_at
`

func (s *Store) Create(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, encrypted_access_token, provider_enrollment_id, institution_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.UserID,
		e.EncryptedAccessToken,
		e.ProviderEnrollmentID,
		e.InstitutionName,
		e.Status,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating enrollment: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*enrollment.Enrollment, error) {
	query := `SELECT ` + selectEnrollmentColumns + ` FROM enrollments WHERE id = $1`

	e, err := scanEnrollment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, enrollment.ErrNotFound
		}

		return nil, fmt.Errorf("getting enrollment: %w", err)
	}

	return e, nil
}

// GetByProviderID resolves a provider enrollment id to the local record.
// Webhook dispatch depends on ErrNotFound here being a quiet no-op.
func (s *Store) GetByProviderID(ctx context.Context, providerEnrollmentID string) (*enrollment.Enrollment, error) {
	query := `SELECT ` + selectEnrollmentColumns + ` FROM enrollments WHERE provider_enrollment_id = $1`

	e, err := scanEnrollment(s.db.QueryRowContext(ctx, query, providerEnrollmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, enrollment.ErrNotFound
		}

		return nil, fmt.Errorf("getting enrollment by provider id: %w", err)
	}

	return e, nil
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID) ([]*enrollment.Enrollment, error) {
	query := `SELECT ` + selectEnrollmentColumns + ` FROM enrollments WHERE user_id = $1 ORDER BY created_at`

	return s.list(ctx, query, userID)
}

// ListByStatus returns enrollments in the given status, oldest sync first, so
// the scheduled worker drains the stalest connections before fresh ones.
func (s *Store) ListByStatus(ctx context.Context, status enrollment.Status) ([]*enrollment.Enrollment, error) {
	query := `SELECT ` + selectEnrollmentColumns + `
		FROM enrollments WHERE status = $1
		ORDER BY last_synced_at ASC NULLS FIRST`

	return s.list(ctx, query, status)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*enrollment.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*enrollment.Enrollment

	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning enrollment: %w", err)
		}

		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enrollments: %w", err)
	}

	return enrollments, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status enrollment.Status) error {
	query := `UPDATE enrollments SET status = $2, updated_at = NOW() WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("updating enrollment status: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrNotFound
	}

	return nil
}

// AdvanceWatermark records a completed sync window. Status is untouched:
// a successful sync never resurrects a degraded or disconnected enrollment.
func (s *Store) AdvanceWatermark(ctx context.Context, id uuid.UUID, syncedDate, syncedAt time.Time) error {
	query := `
		UPDATE enrollments
		SET last_synced_date = $2, last_synced_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id, syncedDate, syncedAt)
	if err != nil {
		return fmt.Errorf("advancing enrollment watermark: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrNotFound
	}

	return nil
}
