// Package insights computes cash-flow totals and recurring-charge signals
// at read time, so classification rules can change without migrating
// stored transactions.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/classify"
	"github.com/jcarver/ledgerlink/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=insights
type TransactionRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*transaction.Transaction, error)
}

// OverrideRepository is the user-maintained suppression list for
// subscription detection, keyed by normalized merchant name.
type OverrideRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]string, error)
	Add(ctx context.Context, userID uuid.UUID, merchant string) error
	Remove(ctx context.Context, userID uuid.UUID, merchant string) error
}

type Service struct {
	transactions TransactionRepository
	overrides    OverrideRepository
}

func NewService(transactions TransactionRepository, overrides OverrideRepository) *Service {
	return &Service{transactions: transactions, overrides: overrides}
}

// CashFlow sums the user's income and expenses over [from, to], excluding
// transfers between the user's own accounts.
func (s *Service) CashFlow(ctx context.Context, userID uuid.UUID, from, to time.Time, currency string) (classify.Aggregates, error) {
	txs, err := s.transactions.ListByUser(ctx, userID, from, to)
	if err != nil {
		return classify.Aggregates{}, fmt.Errorf("listing transactions: %w", err)
	}

	records := make([]classify.Record, 0, len(txs))
	for _, tx := range txs {
		records = append(records, classify.FromTransaction(tx))
	}

	return classify.ComputeAggregates(records, currency)
}

// Subscriptions recomputes the user's recurring-charge candidates over
// [from, to] from current data. Nothing is cached: new charges can confirm
// or disprove a pattern the next time this runs.
func (s *Service) Subscriptions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]classify.Subscription, error) {
	txs, err := s.transactions.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	suppressedList, err := s.overrides.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}

	suppressed := make(map[string]struct{}, len(suppressedList))
	for _, merchant := range suppressedList {
		suppressed[classify.NormalizeMerchant(merchant)] = struct{}{}
	}

	records := make([]classify.DatedRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, classify.DatedRecord{
			Record: classify.FromTransaction(tx),
			Date:   tx.Date,
		})
	}

	return classify.DetectSubscriptions(records, suppressed), nil
}

// SuppressMerchant adds a merchant to the user's subscription override list.
func (s *Service) SuppressMerchant(ctx context.Context, userID uuid.UUID, merchant string) error {
	return s.overrides.Add(ctx, userID, classify.NormalizeMerchant(merchant))
}

// UnsuppressMerchant removes a merchant from the override list.
func (s *Service) UnsuppressMerchant(ctx context.Context, userID uuid.UUID, merchant string) error {
	return s.overrides.Remove(ctx, userID, classify.NormalizeMerchant(merchant))
}
