package syncer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/account"
	"github.com/jcarver/ledgerlink/internal/money"
	"github.com/jcarver/ledgerlink/internal/provider"
	"github.com/jcarver/ledgerlink/internal/transaction"
)

// providerCategoryConfidence is the confidence assigned when the provider
// itself reports a category. Provider categories are usually right but not
// authoritative, so they sit at the bottom of the high bucket.
const providerCategoryConfidence = 0.8

// MapTransaction translates one provider record into the domain upsert shape.
//
// The provider reports positive amounts for money leaving the account; the
// system-wide convention is the opposite, so the sign is negated here. For
// credit and loan accounts a post-negation positive amount is a bill payment
// into the account, flagged as a transfer so it never counts as income.
func MapTransaction(userID uuid.UUID, acct *account.Account, raw provider.Transaction) (transaction.UpsertParams, error) {
	date, err := raw.PostedDate()
	if err != nil {
		return transaction.UpsertParams{}, err
	}

	amount, err := money.NewFromString(raw.Amount, acct.Currency)
	if err != nil {
		return transaction.UpsertParams{}, fmt.Errorf("parsing amount for %s: %w", raw.ID, err)
	}

	amount = amount.Neg()

	params := transaction.UpsertParams{
		UserID:                userID,
		AccountID:             acct.ID,
		ProviderTransactionID: raw.ID,
		Amount:                amount,
		Date:                  date,
		Name:                  raw.Description,
		IsPending:             raw.Pending(),
	}

	if account.TraitsFor(acct.Kind).InboundPaymentIsTransfer && amount.IsPositive() {
		params.IsTransfer = true
	}

	if counterparty := raw.Details.Counterparty; counterparty != nil && counterparty.Name != "" {
		params.MerchantName = &counterparty.Name
	}

	// Category metadata only when the provider reported one; otherwise the
	// fields stay unset for a downstream classifier or user override.
	if raw.Details.Category != "" {
		category := raw.Details.Category
		source := transaction.SourceProvider

		confidence, err := money.NewConfidenceScore(providerCategoryConfidence)
		if err != nil {
			return transaction.UpsertParams{}, err
		}

		params.Category = &category
		params.CategorySource = &source
		params.CategoryConfidence = &confidence
	}

	return params, nil
}

// MapAccount translates a provider account into the domain shape. Balances
// arrive separately and are attached by the caller when the fetch succeeds.
func MapAccount(userID, enrollmentID uuid.UUID, raw provider.Account) *account.Account {
	return &account.Account{
		UserID:            userID,
		EnrollmentID:      enrollmentID,
		ProviderAccountID: raw.ID,
		Name:              raw.Name,
		Kind:              account.KindFromProvider(raw.Type, raw.Subtype),
		Currency:          raw.Currency,
	}
}

// MapBalance parses the provider's decimal balance strings. Either field may
// be absent; absent stays nil rather than zero.
func MapBalance(raw *provider.Balance, currency string) (current, available *money.Money, err error) {
	if raw == nil {
		return nil, nil, nil
	}

	if raw.Ledger != nil {
		m, err := money.NewFromString(*raw.Ledger, currency)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing ledger balance: %w", err)
		}

		current = &m
	}

	if raw.Available != nil {
		m, err := money.NewFromString(*raw.Available, currency)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing available balance: %w", err)
		}

		available = &m
	}

	return current, available, nil
}
