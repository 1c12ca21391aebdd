// Package transaction models an institution-reported ledger entry.
package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/money"
)

var ErrNotFound = errors.New("transaction not found")

// CategorySource records where the category assignment came from. A user
// override always wins and is never overwritten by sync upserts.
type CategorySource string

const (
	SourceProvider CategorySource = "provider"
	SourceRule     CategorySource = "rule"
	SourceModel    CategorySource = "model"
	SourceUser     CategorySource = "user"
)

// Transaction is one ledger entry on one account. The system-wide sign
// convention applies: negative means money leaving the user, positive means
// money entering the user.
type Transaction struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	AccountID             uuid.UUID
	ProviderTransactionID string
	Amount                money.Money
	Date                  time.Time
	Name                  string
	MerchantName          *string
	Category              *string
	CategoryConfidence    *money.ConfidenceScore
	CategorySource        *CategorySource
	IsTransfer            bool
	IsPending             bool
	Note                  *string
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// UpsertParams is the domain shape produced by the syncer's mapping layer,
// keyed by (account, provider transaction id) for idempotent upserts.
type UpsertParams struct {
	UserID                uuid.UUID
	AccountID             uuid.UUID
	ProviderTransactionID string
	Amount                money.Money
	Date                  time.Time
	Name                  string
	MerchantName          *string
	Category              *string
	CategoryConfidence    *money.ConfidenceScore
	CategorySource        *CategorySource
	IsTransfer            bool
	IsPending             bool
}

// BatchResult reports the outcome of a chunked batch upsert. A non-zero
// Failed count is logged by callers but is not fatal to the sync run.
type BatchResult struct {
	Succeeded int
	Failed    int
}

func (r BatchResult) Add(other BatchResult) BatchResult {
	return BatchResult{
		Succeeded: r.Succeeded + other.Succeeded,
		Failed:    r.Failed + other.Failed,
	}
}
