package classify

import (
	"fmt"

	"github.com/jcarver/ledgerlink/internal/money"
)

// Aggregates are cash-flow totals over a set of records. Both totals are
// non-negative; Net is income minus expenses.
type Aggregates struct {
	Income   money.Money
	Expenses money.Money
}

// Net returns income minus expenses.
func (a Aggregates) Net() (money.Money, error) {
	return a.Income.Sub(a.Expenses)
}

// ComputeAggregates sums the income and expense buckets by absolute value,
// skipping records that classify as transfers. Summing raw signs instead
// would double-count card payments and misreported expenses, which is the
// whole reason the classifier exists.
func ComputeAggregates(records []Record, currency string) (Aggregates, error) {
	zero, err := money.NewFromString("0", currency)
	if err != nil {
		return Aggregates{}, err
	}

	totals := Aggregates{Income: zero, Expenses: zero}

	for _, r := range records {
		switch Classify(r) {
		case FlowTransfer:
			continue
		case FlowIncome:
			totals.Income, err = totals.Income.Add(r.Amount.Abs())
		case FlowExpense:
			totals.Expenses, err = totals.Expenses.Add(r.Amount.Abs())
		}

		if err != nil {
			return Aggregates{}, fmt.Errorf("aggregating %q: %w", r.Name, err)
		}
	}

	return totals, nil
}
