// Package account models an institution-reported financial account.
package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jcarver/ledgerlink/internal/money"
)

var ErrNotFound = errors.New("account not found")

// Kind tags the account variant. Four fixed variants plus a catch-all;
// behavior differences live in the traits table below, not in subtypes.
type Kind string

const (
	KindBank       Kind = "bank"
	KindCredit     Kind = "credit"
	KindInvestment Kind = "investment"
	KindLoan       Kind = "loan"
	KindOther      Kind = "other"
)

// Traits captures the per-kind behavior the sync engine cares about.
type Traits struct {
	// DisplayAvailable selects the available balance as the headline figure
	// instead of the ledger balance.
	DisplayAvailable bool
	// InboundPaymentIsTransfer marks post-negation positive amounts as
	// transfers: paying down a card or loan is not income on that account.
	InboundPaymentIsTransfer bool
}

var kindTraits = map[Kind]Traits{
	KindBank:       {DisplayAvailable: true},
	KindCredit:     {InboundPaymentIsTransfer: true},
	KindInvestment: {},
	KindLoan:       {InboundPaymentIsTransfer: true},
	KindOther:      {},
}

// TraitsFor returns the traits for a kind, defaulting to KindOther's.
func TraitsFor(kind Kind) Traits {
	if t, ok := kindTraits[kind]; ok {
		return t
	}

	return kindTraits[KindOther]
}

// KindFromProvider maps the provider's account type/subtype pair onto a Kind.
func KindFromProvider(accountType, subtype string) Kind {
	switch accountType {
	case "depository":
		return KindBank
	case "credit":
		return KindCredit
	case "investment", "brokerage":
		return KindInvestment
	case "loan":
		return KindLoan
	}

	switch subtype {
	case "credit_card":
		return KindCredit
	case "mortgage", "student_loan", "auto_loan":
		return KindLoan
	}

	return KindOther
}

// Account is one institution-reported account, owned by exactly one
// enrollment and one user. (enrollment, providerAccountID) is unique.
type Account struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	EnrollmentID      uuid.UUID
	ProviderAccountID string
	Name              string
	Kind              Kind
	CurrentBalance    *money.Money
	AvailableBalance  *money.Money
	LimitAmount       *money.Money // credit kind only
	Currency          string
	LastSyncedAt      *time.Time
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// DisplayBalance picks the balance to surface for this account's kind.
func (a *Account) DisplayBalance() *money.Money {
	if TraitsFor(a.Kind).DisplayAvailable && a.AvailableBalance != nil {
		return a.AvailableBalance
	}

	return a.CurrentBalance
}
