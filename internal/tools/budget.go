// Package tools holds the pure local computations used by the planner:
// budget split, guest capacity check, schedule lookup, menu pricing and
// shopping list derivation.
package tools

import (
	"math"

	"eventplanner/internal/domain"
)

// DefaultPerGuestRate applies to event types missing from the rate table.
const DefaultPerGuestRate = 600.0

var perGuestRates = map[string]float64{
	domain.EventBirthdayParty:  500,
	domain.EventCorporateEvent: 1000,
	domain.EventBabyShower:     400,
	domain.EventFarewellParty:  400,
	domain.EventAnniversary:    750,
	domain.EventWedding:        2000,
}

// Budget categories in breakdown order.
const (
	CategoryFood          = "food"
	CategoryVenue         = "venue"
	CategoryDecor         = "decor"
	CategoryEntertainment = "entertainment"
	CategoryMisc          = "misc"
)

var budgetSplit = []struct {
	category string
	share    float64
}{
	{CategoryFood, 0.40},
	{CategoryVenue, 0.25},
	{CategoryDecor, 0.20},
	{CategoryEntertainment, 0.10},
	{CategoryMisc, 0.05},
}

// BudgetLine is one category of a budget breakdown.
type BudgetLine struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// BudgetResult is the outcome of Budget.
type BudgetResult struct {
	TotalBudget float64      `json:"total_budget"`
	GuestCount  int          `json:"guest_count"`
	Breakdown   []BudgetLine `json:"breakdown"`
}

// Amount returns the breakdown amount for category, or 0.
func (b BudgetResult) Amount(category string) float64 {
	for _, l := range b.Breakdown {
		if l.Category == category {
			return l.Amount
		}
	}
	return 0
}

// PerGuestRate returns the per-guest base rate for an event type.
func PerGuestRate(eventType string) float64 {
	if r, ok := perGuestRates[eventType]; ok {
		return r
	}
	return DefaultPerGuestRate
}

// Budget estimates the total cost as rate*guests, clamped to a positive ceiling,
// and splits it into fixed category shares. Each share is rounded to cents on
// its own; the remainder is not redistributed.
func Budget(guestCount int, eventType string, ceiling *float64) BudgetResult {
	raw := PerGuestRate(eventType) * float64(guestCount)
	if ceiling != nil && *ceiling > 0 && raw > *ceiling {
		raw = *ceiling
	}
	lines := make([]BudgetLine, len(budgetSplit))
	for i, s := range budgetSplit {
		lines[i] = BudgetLine{Category: s.category, Amount: round2(raw * s.share)}
	}
	return BudgetResult{
		TotalBudget: round2(raw),
		GuestCount:  guestCount,
		Breakdown:   lines,
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
