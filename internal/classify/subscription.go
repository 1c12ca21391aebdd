package classify

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcarver/ledgerlink/internal/money"
)

// amountTolerance is how far a charge may deviate from the merchant's mean
// charge and still count as "the same" recurring amount.
var amountTolerance = decimal.NewFromFloat(0.4)

// DatedRecord is a Record plus the posting date the cadence check needs.
type DatedRecord struct {
	Record
	Date time.Time
}

// Subscription is a merchant flagged as a recurring charge.
type Subscription struct {
	Merchant      string
	ChargeCount   int
	AverageCharge money.Money
	LastCharged   time.Time
}

// DetectSubscriptions flags merchants that look like recurring charges:
// at least two expense charges, all within 40% of their mean magnitude,
// spanning at least two distinct calendar months. The result is recomputed
// from current data on every call; new charges can confirm or disprove a
// pattern, so nothing here is cached as a persistent label. Merchants in
// suppressed are never flagged regardless of the statistics.
func DetectSubscriptions(records []DatedRecord, suppressed map[string]struct{}) []Subscription {
	byMerchant := make(map[string][]DatedRecord)

	for _, r := range records {
		merchant := strings.TrimSpace(r.MerchantName)
		if merchant == "" {
			continue
		}

		// Only settled outflows count: transfers and provider-missigned
		// income have no recurring-spend meaning.
		if Classify(r.Record) != FlowExpense || !r.Amount.IsNegative() {
			continue
		}

		byMerchant[merchant] = append(byMerchant[merchant], r)
	}

	var subscriptions []Subscription

	for merchant, charges := range byMerchant {
		if len(charges) < 2 {
			continue
		}

		if _, ok := suppressed[NormalizeMerchant(merchant)]; ok {
			continue
		}

		if !consistentAmounts(charges) || !spansTwoMonths(charges) {
			continue
		}

		subscriptions = append(subscriptions, summarize(merchant, charges))
	}

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].Merchant < subscriptions[j].Merchant
	})

	return subscriptions
}

// NormalizeMerchant is the canonical key for override suppression lists.
func NormalizeMerchant(merchant string) string {
	return strings.ToLower(strings.TrimSpace(merchant))
}

func meanMagnitude(charges []DatedRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range charges {
		sum = sum.Add(c.Amount.Amount().Abs())
	}

	return sum.Div(decimal.NewFromInt(int64(len(charges))))
}

func consistentAmounts(charges []DatedRecord) bool {
	mean := meanMagnitude(charges)
	if mean.IsZero() {
		return false
	}

	allowed := mean.Mul(amountTolerance)

	for _, c := range charges {
		if c.Amount.Amount().Abs().Sub(mean).Abs().Cmp(allowed) > 0 {
			return false
		}
	}

	return true
}

// spansTwoMonths rejects same-month double billing as a recurring pattern.
func spansTwoMonths(charges []DatedRecord) bool {
	months := make(map[string]struct{}, len(charges))
	for _, c := range charges {
		months[c.Date.Format("2006-01")] = struct{}{}
	}

	return len(months) >= 2
}

func summarize(merchant string, charges []DatedRecord) Subscription {
	sub := Subscription{
		Merchant:    merchant,
		ChargeCount: len(charges),
		LastCharged: charges[0].Date,
	}

	for _, c := range charges {
		if c.Date.After(sub.LastCharged) {
			sub.LastCharged = c.Date
		}
	}

	avg, err := money.New(meanMagnitude(charges), charges[0].Amount.Currency())
	if err == nil {
		sub.AverageCharge = avg
	}

	return sub
}
