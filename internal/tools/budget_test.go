package tools

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"eventplanner/internal/domain"
)

func TestBudget_BirthdayThirtyGuests(t *testing.T) {
	got := Budget(30, domain.EventBirthdayParty, nil)
	want := BudgetResult{
		TotalBudget: 15000,
		GuestCount:  30,
		Breakdown: []BudgetLine{
			{CategoryFood, 6000},
			{CategoryVenue, 3750},
			{CategoryDecor, 3000},
			{CategoryEntertainment, 1500},
			{CategoryMisc, 750},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Budget mismatch (-want +got):\n%s", diff)
	}
}

func TestBudget_Rates(t *testing.T) {
	cases := map[string]float64{
		domain.EventBirthdayParty:  500,
		domain.EventCorporateEvent: 1000,
		domain.EventBabyShower:     400,
		domain.EventFarewellParty:  400,
		domain.EventAnniversary:    750,
		domain.EventWedding:        2000,
		domain.EventOther:          600,
		"housewarming":             600,
	}
	for eventType, rate := range cases {
		assert.Equal(t, rate*10, Budget(10, eventType, nil).TotalBudget, eventType)
	}
}

func TestBudget_Ceiling(t *testing.T) {
	ceiling := 10000.0
	got := Budget(30, domain.EventBirthdayParty, &ceiling)
	assert.Equal(t, 10000.0, got.TotalBudget)
	assert.Equal(t, 4000.0, got.Amount(CategoryFood))

	high := 50000.0
	assert.Equal(t, 15000.0, Budget(30, domain.EventBirthdayParty, &high).TotalBudget)

	zero := 0.0
	assert.Equal(t, 15000.0, Budget(30, domain.EventBirthdayParty, &zero).TotalBudget, "zero ceiling means no ceiling")
}

func TestBudget_DeterministicAndSumsToTotal(t *testing.T) {
	for _, eventType := range append(domain.EventCategories, "unknown") {
		for guests := 0; guests <= 120; guests += 7 {
			for _, c := range []float64{0, 999, 12345, 1e6} {
				ceiling := c
				a := Budget(guests, eventType, &ceiling)
				b := Budget(guests, eventType, &ceiling)
				assert.Equal(t, a, b)

				sum := 0.0
				for _, l := range a.Breakdown {
					sum += l.Amount
				}
				assert.InDelta(t, a.TotalBudget, sum, 0.01, "%s/%d/%v", eventType, guests, c)
			}
		}
	}
}

func TestBudget_Amount_Unknown(t *testing.T) {
	assert.Zero(t, Budget(1, domain.EventWedding, nil).Amount("photography"))
}
