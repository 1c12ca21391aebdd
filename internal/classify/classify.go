// Package classify turns raw transaction records into cash-flow categories.
// Everything here is pure and stateless: classification happens at read time
// so the rules can evolve without backfilling stored rows.
//
// Providers mis-sign certain transaction kinds (rent debited as a "deposit",
// card payments that look like income), so the raw sign alone is never
// trusted for positive amounts.
package classify

import (
	"strings"

	"github.com/jcarver/ledgerlink/internal/money"
	"github.com/jcarver/ledgerlink/internal/transaction"
)

// Flow is the cash-flow category of a record.
type Flow string

const (
	FlowIncome   Flow = "income"
	FlowExpense  Flow = "expense"
	FlowTransfer Flow = "transfer"
)

// Record is the minimal shape the classifier needs.
type Record struct {
	Amount       money.Money
	Name         string
	MerchantName string
	Category     string
	IsTransfer   bool
}

// FromTransaction adapts a stored transaction for classification.
func FromTransaction(tx *transaction.Transaction) Record {
	r := Record{
		Amount:     tx.Amount,
		Name:       tx.Name,
		IsTransfer: tx.IsTransfer,
	}

	if tx.MerchantName != nil {
		r.MerchantName = *tx.MerchantName
	}

	if tx.Category != nil {
		r.Category = *tx.Category
	}

	return r
}

// Categories that are expenses no matter what sign the provider reported.
var expenseCategories = map[string]struct{}{
	"rent":         {},
	"mortgage":     {},
	"loan":         {},
	"insurance":    {},
	"utilities":    {},
	"tuition":      {},
	"car payment":  {},
	"student loan": {},
}

// Words that mark a description as an expense when they terminate a token,
// so compound merchant strings like "BILTRENT" still match.
var expenseSuffixes = []string{"rent", "mortgage", "loan", "insurance", "tuition", "lease"}

// Words that mark a payment action.
var paymentWords = []string{"payment", "pymt", "pmt", "autopay", "pay"}

// Card issuers and fintech lenders whose "payment" descriptions are bill
// payments between the user's own accounts.
var cardIssuers = []string{
	"chase", "amex", "american express", "citi", "discover", "capital one",
	"barclays", "wells fargo", "bank of america", "us bank", "synchrony",
	"bilt", "apple card", "affirm", "klarna", "afterpay", "sofi", "upgrade",
}

// Digital wallet brands carved out of the issuer check: "GOOGLE PAY" is a
// purchase channel, not a card payment.
var walletBrands = []string{"apple pay", "google pay", "samsung pay", "cash app"}

// Generic card-payment phrasings that need no issuer name.
var genericCardPayments = []string{
	"credit card payment", "credit crd payment", "card payment", "cc payment",
	"credit card autopay",
}

// Classify maps a record onto income, expense or transfer. Rules fire in
// priority order; the first match wins.
func Classify(r Record) Flow {
	// 1. An explicit transfer flag settles it.
	if r.IsTransfer {
		return FlowTransfer
	}

	name := strings.ToLower(strings.TrimSpace(r.Name))

	if r.Amount.IsPositive() {
		// 2. Misreported expense: a "deposit" that is really rent,
		// insurance, a loan installment and so on.
		if isMisreportedExpense(name, strings.ToLower(strings.TrimSpace(r.Category))) {
			return FlowExpense
		}

		// 3. Card or lender bill payment: the user's own money moving
		// onto a linked card, not income.
		if isTransferPayment(name) {
			return FlowTransfer
		}
	}

	// 4. Sign fallback.
	switch {
	case r.Amount.IsPositive():
		return FlowIncome
	case r.Amount.IsNegative():
		return FlowExpense
	default:
		return FlowTransfer
	}
}

func isMisreportedExpense(name, category string) bool {
	// The category condition is sufficient on its own.
	if _, ok := expenseCategories[category]; ok {
		return true
	}

	// The name condition needs both an expense-suffixed token and a
	// payment-action word.
	return hasExpenseSuffix(name) && containsAnyWord(name, paymentWords)
}

func hasExpenseSuffix(name string) bool {
	for _, token := range strings.Fields(name) {
		for _, suffix := range expenseSuffixes {
			if strings.HasSuffix(token, suffix) {
				return true
			}
		}
	}

	return false
}

func isTransferPayment(name string) bool {
	// Wallet brands never count as issuer payments even though they
	// contain "pay".
	for _, wallet := range walletBrands {
		if strings.Contains(name, wallet) {
			return false
		}
	}

	for _, phrase := range genericCardPayments {
		if strings.Contains(name, phrase) {
			return true
		}
	}

	if !containsAnyWord(name, paymentWords) {
		return false
	}

	for _, issuer := range cardIssuers {
		if strings.Contains(name, issuer) {
			return true
		}
	}

	return false
}

// containsAnyWord matches whole tokens, so "payroll" does not trip on "pay".
func containsAnyWord(name string, words []string) bool {
	for _, token := range strings.Fields(name) {
		for _, w := range words {
			if token == w {
				return true
			}
		}
	}

	return false
}
