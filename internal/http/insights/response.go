package insights

import (
	"time"

	"github.com/jcarver/ledgerlink/internal/classify"
	"github.com/jcarver/ledgerlink/internal/money"
)

type amountResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toAmount(m money.Money) amountResponse {
	return amountResponse{
		Amount:   m.Amount().String(),
		Currency: m.Currency(),
	}
}

type cashFlowResponse struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Income   amountResponse `json:"income"`
	Expenses amountResponse `json:"expenses"`
	Net      amountResponse `json:"net"`
}

func toCashFlowResponse(a classify.Aggregates, net money.Money, from, to time.Time) cashFlowResponse {
	return cashFlowResponse{
		From:     from.Format(time.DateOnly),
		To:       to.Format(time.DateOnly),
		Income:   toAmount(a.Income),
		Expenses: toAmount(a.Expenses),
		Net:      toAmount(net),
	}
}

type subscriptionResponse struct {
	Merchant      string         `json:"merchant"`
	ChargeCount   int            `json:"charge_count"`
	AverageCharge amountResponse `json:"average_charge"`
	LastCharged   string         `json:"last_charged"`
}

func toSubscriptionResponseList(subs []classify.Subscription) []subscriptionResponse {
	resp := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		resp[i] = subscriptionResponse{
			Merchant:      sub.Merchant,
			ChargeCount:   sub.ChargeCount,
			AverageCharge: toAmount(sub.AverageCharge),
			LastCharged:   sub.LastCharged.Format(time.DateOnly),
		}
	}

	return resp
}
