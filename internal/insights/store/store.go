package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add records a merchant suppression. Re-adding an existing suppression is
// a no-op rather than an error.
func (s *Store) Add(ctx context.Context, userID uuid.UUID, merchant string) error {
	query := `
		INSERT INTO subscription_overrides (user_id, merchant)
		VALUES ($1, $2)
		ON CONFLICT (user_id, merchant) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, userID, merchant); err != nil {
		return fmt.Errorf("inserting subscription override: %w", err)
	}

	return nil
}

func (s *Store) Remove(ctx context.Context, userID uuid.UUID, merchant string) error {
	query := `
		DELETE FROM subscription_overrides
		WHERE user_id = $1 AND merchant = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, merchant); err != nil {
		return fmt.Errorf("deleting subscription override: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT merchant
		FROM subscription_overrides
		WHERE user_id = $1
		ORDER BY merchant`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying subscription overrides: %w", err)
	}
	defer rows.Close()

	var merchants []string
	for rows.Next() {
		var merchant string
		if err := rows.Scan(&merchant); err != nil {
			return nil, fmt.Errorf("scanning subscription override: %w", err)
		}
		merchants = append(merchants, merchant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscription overrides: %w", err)
	}

	return merchants, nil
}
