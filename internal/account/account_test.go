package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcarver/ledgerlink/internal/account"
	"github.com/jcarver/ledgerlink/internal/money"
)

func TestKindFromProvider(t *testing.T) {
	type testCase struct {
		name        string
		accountType string
		subtype     string
		want        account.Kind
	}

	tests := []testCase{
		{name: "Depository", accountType: "depository", subtype: "checking", want: account.KindBank},
		{name: "Credit", accountType: "credit", subtype: "credit_card", want: account.KindCredit},
		{name: "Investment", accountType: "investment", want: account.KindInvestment},
		{name: "Brokerage", accountType: "brokerage", want: account.KindInvestment},
		{name: "Loan", accountType: "loan", subtype: "mortgage", want: account.KindLoan},
		{name: "SubtypeCreditCard", accountType: "", subtype: "credit_card", want: account.KindCredit},
		{name: "SubtypeStudentLoan", accountType: "", subtype: "student_loan", want: account.KindLoan},
		{name: "Unknown", accountType: "mystery", subtype: "mystery", want: account.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, account.KindFromProvider(tt.accountType, tt.subtype))
		})
	}
}

func TestTraitsFor(t *testing.T) {
	assert.True(t, account.TraitsFor(account.KindCredit).InboundPaymentIsTransfer)
	assert.True(t, account.TraitsFor(account.KindLoan).InboundPaymentIsTransfer)
	assert.False(t, account.TraitsFor(account.KindBank).InboundPaymentIsTransfer)
	assert.True(t, account.TraitsFor(account.KindBank).DisplayAvailable)
	assert.Equal(t, account.TraitsFor(account.KindOther), account.TraitsFor(account.Kind("whatever")))
}

func TestAccount_DisplayBalance(t *testing.T) {
	ledger := money.MustNew("1000", "USD")
	available := money.MustNew("900", "USD")

	bank := &account.Account{Kind: account.KindBank, CurrentBalance: &ledger, AvailableBalance: &available}
	assert.True(t, bank.DisplayBalance().Equal(available))

	card := &account.Account{Kind: account.KindCredit, CurrentBalance: &ledger, AvailableBalance: &available}
	assert.True(t, card.DisplayBalance().Equal(ledger))

	noAvailable := &account.Account{Kind: account.KindBank, CurrentBalance: &ledger}
	assert.True(t, noAvailable.DisplayBalance().Equal(ledger))
}
