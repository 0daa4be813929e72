package planner

import "eventplanner/internal/domain"

// Finalize fills the defaults a structured plan must carry: guest_count from
// the extraction or defaultGuests, zero for missing shopping prices, and empty
// lists instead of nil. Applying it twice equals applying it once.
func Finalize(plan *domain.EventPlan, ex *domain.EventExtraction, defaultGuests int) {
	if plan == nil {
		return
	}
	if defaultGuests <= 0 {
		defaultGuests = DefaultGuestCount
	}
	if plan.GuestCount == nil {
		n := defaultGuests
		if ex != nil && ex.GuestCount != nil {
			n = *ex.GuestCount
		}
		plan.GuestCount = &n
	}
	for i := range plan.ShoppingList {
		if plan.ShoppingList[i].EstimatedPrice == nil {
			zero := 0.0
			plan.ShoppingList[i].EstimatedPrice = &zero
		}
	}
	for i := range plan.VenueSuggestions {
		if plan.VenueSuggestions[i].Features == nil {
			plan.VenueSuggestions[i].Features = []string{}
		}
	}
	plan.Guests = emptyIfNil(plan.Guests)
	plan.Schedule = emptyIfNil(plan.Schedule)
	plan.BudgetBreakdown = emptyIfNil(plan.BudgetBreakdown)
	plan.Menu = emptyIfNil(plan.Menu)
	plan.VenueSuggestions = emptyIfNil(plan.VenueSuggestions)
	plan.DecorationPlan = emptyIfNil(plan.DecorationPlan)
	plan.ShoppingList = emptyIfNil(plan.ShoppingList)
	plan.Recommendations = emptyIfNil(plan.Recommendations)
}

// Fallback builds the minimal plan used when structured generation fails.
func Fallback(ex *domain.EventExtraction, defaultGuests int) *domain.EventPlan {
	plan := &domain.EventPlan{EventType: ex.EventType}
	if ex.Date != nil {
		d := *ex.Date
		plan.Date = &d
	}
	if ex.GuestCount != nil {
		n := *ex.GuestCount
		plan.GuestCount = &n
	}
	if ex.Budget != nil {
		b := *ex.Budget
		plan.BudgetTotal = &b
	}
	Finalize(plan, ex, defaultGuests)
	return plan
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
