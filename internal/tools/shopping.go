package tools

import (
	"strconv"

	"eventplanner/internal/domain"
)

// ShoppingListFromPlan derives a shopping list from the plan's menu and decorations.
// Menu items are essential food purchases; decorations keep their own priority.
func ShoppingListFromPlan(plan *domain.EventPlan) []domain.ShoppingListItem {
	if plan == nil {
		return nil
	}
	out := make([]domain.ShoppingListItem, 0, len(plan.Menu)+len(plan.DecorationPlan))
	for _, m := range plan.Menu {
		qty := ""
		if m.Quantity != nil {
			qty = *m.Quantity
		}
		out = append(out, domain.ShoppingListItem{
			Item:           orUnknown(m.Name),
			Quantity:       qty,
			EstimatedPrice: m.EstimatedCost,
			Priority:       "essential",
			Category:       strPtr("food"),
		})
	}
	for _, d := range plan.DecorationPlan {
		priority := d.Priority
		if priority == "" {
			priority = "optional"
		}
		cost := d.EstimatedCost
		out = append(out, domain.ShoppingListItem{
			Item:           orUnknown(d.Item),
			Quantity:       strconv.Itoa(d.Quantity),
			EstimatedPrice: &cost,
			Priority:       priority,
			Category:       strPtr("decoration"),
		})
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func strPtr(s string) *string { return &s }
