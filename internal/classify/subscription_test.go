package classify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcarver/ledgerlink/internal/classify"
	"github.com/jcarver/ledgerlink/internal/money"
)

func charge(merchant, amount string, year int, month time.Month, day int) classify.DatedRecord {
	return classify.DatedRecord{
		Record: classify.Record{
			Amount:       money.MustNew(amount, "USD"),
			Name:         merchant,
			MerchantName: merchant,
		},
		Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestDetectSubscriptions(t *testing.T) {
	type testCase struct {
		name          string
		records       []classify.DatedRecord
		suppressed    map[string]struct{}
		wantMerchants []string
	}

	tests := []testCase{
		{
			name: "SteadyMonthlyCharge",
			records: []classify.DatedRecord{
				charge("Netflix", "-15.49", 2026, time.May, 3),
				charge("Netflix", "-15.49", 2026, time.June, 3),
				charge("Netflix", "-15.49", 2026, time.July, 3),
			},
			wantMerchants: []string{"Netflix"},
		},
		{
			name: "WithinToleranceVariation",
			records: []classify.DatedRecord{
				charge("Gym", "-40.00", 2026, time.May, 1),
				charge("Gym", "-50.00", 2026, time.June, 1),
			},
			wantMerchants: []string{"Gym"},
		},
		{
			name: "SameMonthDoubleBilling",
			records: []classify.DatedRecord{
				charge("Spotify", "-11.99", 2026, time.May, 2),
				charge("Spotify", "-11.99", 2026, time.May, 28),
			},
			wantMerchants: nil,
		},
		{
			name: "WildlyVaryingAmounts",
			records: []classify.DatedRecord{
				charge("Amazon", "-12.00", 2026, time.May, 5),
				charge("Amazon", "-230.00", 2026, time.June, 9),
			},
			wantMerchants: nil,
		},
		{
			name: "SingleCharge",
			records: []classify.DatedRecord{
				charge("HBO", "-14.99", 2026, time.May, 1),
			},
			wantMerchants: nil,
		},
		{
			name: "SuppressedByOverride",
			records: []classify.DatedRecord{
				charge("Netflix", "-15.49", 2026, time.May, 3),
				charge("Netflix", "-15.49", 2026, time.June, 3),
			},
			suppressed:    map[string]struct{}{"netflix": {}},
			wantMerchants: nil,
		},
		{
			name: "TransfersIgnored",
			records: []classify.DatedRecord{
				{
					Record: classify.Record{
						Amount:       money.MustNew("-500", "USD"),
						Name:         "CHASE AUTOPAY",
						MerchantName: "Chase",
						IsTransfer:   true,
					},
					Date: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
				},
				{
					Record: classify.Record{
						Amount:       money.MustNew("-500", "USD"),
						Name:         "CHASE AUTOPAY",
						MerchantName: "Chase",
						IsTransfer:   true,
					},
					Date: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantMerchants: nil,
		},
		{
			name: "PositiveAmountsIgnored",
			records: []classify.DatedRecord{
				charge("Refundsy", "18.00", 2026, time.May, 1),
				charge("Refundsy", "18.00", 2026, time.June, 1),
			},
			wantMerchants: nil,
		},
		{
			name: "MultipleMerchantsSorted",
			records: []classify.DatedRecord{
				charge("Spotify", "-11.99", 2026, time.May, 2),
				charge("Spotify", "-11.99", 2026, time.June, 2),
				charge("Netflix", "-15.49", 2026, time.May, 3),
				charge("Netflix", "-15.49", 2026, time.June, 3),
			},
			wantMerchants: []string{"Netflix", "Spotify"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := classify.DetectSubscriptions(tt.records, tt.suppressed)

			merchants := make([]string, 0, len(subs))
			for _, s := range subs {
				merchants = append(merchants, s.Merchant)
			}

			if tt.wantMerchants == nil {
				assert.Empty(t, merchants)
				return
			}

			assert.Equal(t, tt.wantMerchants, merchants)
		})
	}
}

func TestDetectSubscriptions_Summary(t *testing.T) {
	subs := classify.DetectSubscriptions([]classify.DatedRecord{
		charge("Netflix", "-15.49", 2026, time.July, 3),
		charge("Netflix", "-15.49", 2026, time.May, 3),
		charge("Netflix", "-15.49", 2026, time.June, 3),
	}, nil)

	require.Len(t, subs, 1)
	assert.Equal(t, 3, subs[0].ChargeCount)
	assert.Equal(t, time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC), subs[0].LastCharged)
	assert.True(t, subs[0].AverageCharge.Equal(money.MustNew("15.49", "USD")))
}

func TestNormalizeMerchant(t *testing.T) {
	assert.Equal(t, "netflix", classify.NormalizeMerchant("  Netflix "))
}
