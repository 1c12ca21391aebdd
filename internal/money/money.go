// Package money provides the monetary value types used across the sync engine.
// Amounts are arbitrary-precision decimals; float64 is never used for money.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ValidationError reports a malformed value-type construction or an illegal
// operation such as adding amounts in different currencies.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Money is an immutable amount in a single ISO-4217 currency.
// The sign convention is system-wide: negative means money leaving the user,
// positive means money entering the user.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New builds a Money from a decimal amount and an ISO-4217 currency code.
func New(amount decimal.Decimal, code string) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, validationErrorf("invalid currency code %q", code)
	}

	return Money{amount: amount, currency: unit.String()}, nil
}

// NewFromString parses a decimal string such as "-1867.55".
func NewFromString(amount, code string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, validationErrorf("invalid amount %q: %v", amount, err)
	}

	return New(d, code)
}

// NewFromMinorUnits builds a Money from an integer count of minor units
// (e.g. cents), using the given exponent (2 for USD/EUR).
func NewFromMinorUnits(units int64, exponent int32, code string) (Money, error) {
	return New(decimal.New(units, -exponent), code)
}

// MustNew is New but panics on error. For constants and tests only.
func MustNew(amount string, code string) Money {
	m, err := NewFromString(amount, code)
	if err != nil {
		panic(err)
	}

	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return validationErrorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}

	return nil
}

// Add returns m + other. Differing currencies are a validation error.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other. Differing currencies are a validation error.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MulScalar returns m scaled by the given decimal factor.
func (m Money) MulScalar(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Neg returns m with the sign flipped.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns m with a non-negative amount.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Cmp compares amounts: -1 if m < other, 0 if equal, 1 if m > other.
// Differing currencies are a validation error.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}

	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether both currency and amount match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
