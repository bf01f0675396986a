package domain

import "math"

// RoundCost rounds to cents, half away from zero.
func RoundCost(v float64) float64 {
	return math.Round(v*100) / 100
}

type BillingSnapshot struct {
	Costs  map[string]float64 // provider key -> month-to-date cost
	Total  float64
	Errors map[string]string
}

type ProviderCost struct {
	Key    string
	Amount float64
	Err    error
}

// NewBillingSnapshot rounds every provider amount first and then rounds the sum
// of the rounded amounts, so total always equals the sum of what is displayed.
func NewBillingSnapshot(costs ...ProviderCost) BillingSnapshot {
	snapshot := BillingSnapshot{
		Costs:  make(map[string]float64, len(costs)),
		Errors: make(map[string]string),
	}

	var total float64
	for _, c := range costs {
		amount := 0.0
		if c.Err != nil {
			snapshot.Errors[c.Key] = ErrorMessage(c.Err)
		} else {
			amount = RoundCost(c.Amount)
		}
		snapshot.Costs[c.Key] = amount
		total += amount
	}
	snapshot.Total = RoundCost(total)

	return snapshot
}
