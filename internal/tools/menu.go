package tools

import "strings"

// DefaultItemPrice is the per-guest price of unrecognized menu items.
const DefaultItemPrice = 100.0

// Checked in order; the first key contained in the item name wins.
var itemPrices = []struct {
	key   string
	price float64
}{
	{"biryani", 150},
	{"butter chicken", 200},
	{"paneer tikka", 100},
	{"naan", 30},
	{"dal makhani", 80},
	{"cake", 500},
	{"soft drinks", 50},
	{"juice", 40},
}

// MenuLine is the estimated cost of one menu item.
type MenuLine struct {
	Item string  `json:"item"`
	Cost float64 `json:"cost"`
}

// MenuEstimate is the outcome of EstimateMenu.
type MenuEstimate struct {
	TotalEstimatedCost float64    `json:"total_estimated_cost"`
	GuestCount         int        `json:"guest_count"`
	Items              []MenuLine `json:"items"`
}

// EstimateMenu prices each item per guest. Cakes are priced once per item.
func EstimateMenu(items []string, guestCount int) MenuEstimate {
	est := MenuEstimate{GuestCount: guestCount, Items: make([]MenuLine, 0, len(items))}
	total := 0.0
	for _, item := range items {
		lower := strings.ToLower(item)
		price := DefaultItemPrice
		for _, p := range itemPrices {
			if strings.Contains(lower, p.key) {
				price = p.price
				break
			}
		}
		cost := price * float64(guestCount)
		if strings.Contains(lower, "cake") {
			cost = price
		}
		est.Items = append(est.Items, MenuLine{Item: item, Cost: cost})
		total += cost
	}
	est.TotalEstimatedCost = round2(total)
	return est
}
