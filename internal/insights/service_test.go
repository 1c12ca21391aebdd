package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jcarver/ledgerlink/internal/money"
	"github.com/jcarver/ledgerlink/internal/transaction"
)

var (
	testUserID = uuid.MustParse("7b8e6a1c-4f2d-4e9b-9c3a-2d1e5f6a7b8c")
	testFrom   = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	testTo     = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
)

func tx(amount, name string, date time.Time, opts ...func(*transaction.Transaction)) *transaction.Transaction {
	t := &transaction.Transaction{
		ID:     uuid.New(),
		UserID: testUserID,
		Amount: money.MustNew(amount, "USD"),
		Name:   name,
		Date:   date,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func withMerchant(merchant string) func(*transaction.Transaction) {
	return func(t *transaction.Transaction) {
		t.MerchantName = &merchant
	}
}

func withTransferFlag() func(*transaction.Transaction) {
	return func(t *transaction.Transaction) {
		t.IsTransfer = true
	}
}

func TestService_CashFlow(t *testing.T) {
	payday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name          string
		setupMock     func(txs *MockTransactionRepository)
		wantIncome    string
		wantExpenses  string
		expectedError bool
	}

	testCases := []testCase{
		{
			name: "sums income and expenses and skips transfers",
			setupMock: func(txs *MockTransactionRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return([]*transaction.Transaction{
					tx("3000.00", "ACME CORP PAYROLL", payday),
					tx("-50.00", "STARBUCKS", payday),
					tx("500.00", "CHASE AUTOPAY", payday, withTransferFlag()),
				}, nil)
			},
			wantIncome:   "3000.00",
			wantExpenses: "50.00",
		},
		{
			name: "no transactions yields zero totals",
			setupMock: func(txs *MockTransactionRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return(nil, nil)
			},
			wantIncome:   "0",
			wantExpenses: "0",
		},
		{
			name: "repository error propagates",
			setupMock: func(txs *MockTransactionRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			txs := NewMockTransactionRepository(ctrl)
			overrides := NewMockOverrideRepository(ctrl)
			tc.setupMock(txs)

			svc := NewService(txs, overrides)

			got, err := svc.CashFlow(context.Background(), testUserID, testFrom, testTo, "USD")
			if tc.expectedError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, got.Income.Equal(money.MustNew(tc.wantIncome, "USD")), "income: got %v", got.Income)
			assert.True(t, got.Expenses.Equal(money.MustNew(tc.wantExpenses, "USD")), "expenses: got %v", got.Expenses)
		})
	}
}

func TestService_Subscriptions(t *testing.T) {
	charges := []*transaction.Transaction{
		tx("-15.99", "NETFLIX.COM", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), withMerchant("Netflix")),
		tx("-15.99", "NETFLIX.COM", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), withMerchant("Netflix")),
		tx("-15.99", "NETFLIX.COM", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), withMerchant("Netflix")),
		tx("-9.99", "SPOTIFY", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), withMerchant("Spotify")),
		tx("-9.99", "SPOTIFY", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), withMerchant("Spotify")),
	}

	type testCase struct {
		name          string
		setupMock     func(txs *MockTransactionRepository, overrides *MockOverrideRepository)
		wantMerchants []string
		expectedError bool
	}

	testCases := []testCase{
		{
			name: "detects recurring merchants",
			setupMock: func(txs *MockTransactionRepository, overrides *MockOverrideRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return(charges, nil)
				overrides.EXPECT().List(gomock.Any(), testUserID).Return(nil, nil)
			},
			wantMerchants: []string{"Netflix", "Spotify"},
		},
		{
			name: "suppressed merchant is excluded",
			setupMock: func(txs *MockTransactionRepository, overrides *MockOverrideRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return(charges, nil)
				overrides.EXPECT().List(gomock.Any(), testUserID).Return([]string{"netflix"}, nil)
			},
			wantMerchants: []string{"Spotify"},
		},
		{
			name: "transaction lookup error propagates",
			setupMock: func(txs *MockTransactionRepository, overrides *MockOverrideRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
		{
			name: "override lookup error propagates",
			setupMock: func(txs *MockTransactionRepository, overrides *MockOverrideRepository) {
				txs.EXPECT().ListByUser(gomock.Any(), testUserID, testFrom, testTo).Return(charges, nil)
				overrides.EXPECT().List(gomock.Any(), testUserID).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			txs := NewMockTransactionRepository(ctrl)
			overrides := NewMockOverrideRepository(ctrl)
			tc.setupMock(txs, overrides)

			svc := NewService(txs, overrides)

			got, err := svc.Subscriptions(context.Background(), testUserID, testFrom, testTo)
			if tc.expectedError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			merchants := make([]string, 0, len(got))
			for _, sub := range got {
				merchants = append(merchants, sub.Merchant)
			}
			assert.Equal(t, tc.wantMerchants, merchants)
		})
	}
}

func TestService_SuppressMerchant_Normalizes(t *testing.T) {
	ctrl := gomock.NewController(t)
	txs := NewMockTransactionRepository(ctrl)
	overrides := NewMockOverrideRepository(ctrl)

	overrides.EXPECT().Add(gomock.Any(), testUserID, "netflix").Return(nil)
	overrides.EXPECT().Remove(gomock.Any(), testUserID, "netflix").Return(nil)

	svc := NewService(txs, overrides)

	require.NoError(t, svc.SuppressMerchant(context.Background(), testUserID, "  Netflix "))
	require.NoError(t, svc.UnsuppressMerchant(context.Background(), testUserID, "NETFLIX"))
}
