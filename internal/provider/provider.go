// Package provider is a thin typed client for the account-aggregation
// provider's read-only HTTP API. The wire shapes here are the provider's,
// not the domain's; the syncer owns the translation between the two.
package provider

import (
	"fmt"
	"time"
)

// Account is a provider-reported financial account.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Subtype     string      `json:"subtype"`
	Currency    string      `json:"currency"`
	Status      string      `json:"status"`
	Institution Institution `json:"institution"`
}

type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Balance carries the ledger and available balances for one account.
// The provider omits either field for some institutions.
type Balance struct {
	AccountID string  `json:"account_id"`
	Ledger    *string `json:"ledger"`
	Available *string `json:"available"`
}

// Transaction is a provider-reported ledger entry. Amount is a decimal
// string in the provider's convention: positive means money leaving the
// user's account.
type Transaction struct {
	ID          string             `json:"id"`
	AccountID   string             `json:"account_id"`
	Amount      string             `json:"amount"`
	Date        string             `json:"date"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	Details     TransactionDetails `json:"details"`
}

type TransactionDetails struct {
	Category     string        `json:"category"`
	Counterparty *Counterparty `json:"counterparty"`
}

type Counterparty struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PostedDate parses the transaction's date field.
func (t Transaction) PostedDate() (time.Time, error) {
	d, err := time.Parse(time.DateOnly, t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing transaction date %q: %w", t.Date, err)
	}

	return d, nil
}

// Pending reports whether the provider still considers the entry unsettled.
func (t Transaction) Pending() bool {
	return t.Status == "pending"
}
