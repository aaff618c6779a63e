package reporting

import (
	"fmt"
	"time"

	"github.com/obralabs/sentinela/pkg/billing"
)

// monthNames holds Portuguese month abbreviations used for history labels.
var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthlyAmount normalizes a subscription line item to its monthly-equivalent
// amount in currency minor units: yearly/12, weekly*4, daily*30, monthly as
// is, divided by the interval count and multiplied by quantity.
//
// This is an approximation: calendar months are not exactly 4 weeks or 30
// days. Reported figures derived from it must be labeled as approximate.
func MonthlyAmount(item billing.SubscriptionItem) float64 {
	amount := float64(item.UnitAmount)

	switch item.Interval {
	case billing.IntervalYear:
		amount /= 12
	case billing.IntervalWeek:
		amount *= 4
	case billing.IntervalDay:
		amount *= 30
	}

	intervalCount := item.IntervalCount
	if intervalCount <= 0 {
		intervalCount = 1
	}
	amount /= float64(intervalCount)

	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	return amount * float64(quantity)
}

// subscriptionTotal is a subscription's monthly-equivalent amount paired with
// its creation time, the inputs for the trend view.
type subscriptionTotal struct {
	amount  float64
	created time.Time
}

// trailingHistory computes the cumulative monthly-equivalent revenue for each
// of the trailing 12 calendar months: for a given month, every subscription
// created at or before that month's end contributes its full amount.
//
// This is a survivorship view: subscriptions that churned before now are
// invisible in past months, so it approximates history and must not be
// presented as audited revenue.
func trailingHistory(totals []subscriptionTotal, now time.Time) map[string]float64 {
	history := make(map[string]float64, 12)

	for i := 11; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		endOfMonth := time.Date(first.Year(), first.Month()+1, 0, 23, 59, 59, 0, time.UTC)
		label := fmt.Sprintf("%s/%02d", monthNames[first.Month()-1], first.Year()%100)

		var sum float64
		for _, t := range totals {
			if !t.created.After(endOfMonth) {
				sum += t.amount
			}
		}
		history[label] = sum
	}

	return history
}
