package heuristic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/domain"
	"eventplanner/internal/llm"
)

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"Plan a birthday party for 30 people":      domain.EventBirthdayParty,
		"Organize a team offsite for engineering":  domain.EventCorporateEvent,
		"Wedding reception for 200 guests":         domain.EventWedding,
		"A baby shower for my sister":              domain.EventBabyShower,
		"Farewell dinner for a colleague":          domain.EventFarewellParty,
		"Our 25th anniversary celebration":         domain.EventAnniversary,
		"Something fun on Saturday":                domain.EventOther,
		"Birthday party at the office for the team": domain.EventBirthdayParty,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), in)
	}
}

func TestExtract(t *testing.T) {
	ex := Extract("Plan a vegetarian birthday party for 30 people on 12th March under ₹25,000")
	assert.Equal(t, domain.EventBirthdayParty, ex.EventType)
	require.NotNil(t, ex.GuestCount)
	assert.Equal(t, 30, *ex.GuestCount)
	require.NotNil(t, ex.Budget)
	assert.Equal(t, 25000.0, *ex.Budget)
	require.NotNil(t, ex.Date)
	assert.Equal(t, "12th March", *ex.Date)
	assert.Equal(t, []string{"vegetarian"}, ex.Preferences)
	assert.NotNil(t, ex.Requirements)
}

func TestExtract_Dates(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"I may need a party for 10 people", ""},
		{"Birthday in March", ""},
		{"Wedding on May 14th, 2026 for 80 guests", "May 14th, 2026"},
		{"anniversary dinner 3 may", "3 may"},
		{"team offsite in May 2026", "May 2026"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			ex := Extract(tc.input)
			if tc.want == "" {
				assert.Nil(t, ex.Date)
				return
			}
			require.NotNil(t, ex.Date)
			assert.Equal(t, tc.want, *ex.Date)
		})
	}
	assert.Equal(t, 10, *Extract("I may need a party for 10 people").GuestCount)
}

func TestExtract_Minimal(t *testing.T) {
	ex := Extract("Plan a birthday party")
	assert.Equal(t, domain.EventBirthdayParty, ex.EventType)
	assert.Nil(t, ex.GuestCount)
	assert.Nil(t, ex.Budget)
	assert.Nil(t, ex.Date)
}

func TestExtract_BudgetInThousands(t *testing.T) {
	ex := Extract("Corporate dinner, 50 guests, budget 60k")
	require.NotNil(t, ex.Budget)
	assert.Equal(t, 60000.0, *ex.Budget)
}

func TestClient_Dispatch(t *testing.T) {
	c := New()
	ctx := context.Background()

	intent, err := c.Complete(ctx, llm.Request{Task: llm.TaskClassifyIntent, Input: "wedding for 100 people"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventWedding, intent)

	text, err := c.Complete(ctx, llm.Request{Task: llm.TaskEnhancePlan, Input: "wedding for 100 people"})
	require.NoError(t, err)
	assert.Contains(t, text, "wedding")

	var ex domain.EventExtraction
	require.NoError(t, c.CompleteJSON(ctx, llm.Request{Task: llm.TaskExtractEvent, Input: "wedding for 100 people"}, llm.Schema{}, &ex))
	assert.Equal(t, 100, *ex.GuestCount)

	var plan domain.EventPlan
	err = c.CompleteJSON(ctx, llm.Request{Task: llm.TaskGeneratePlan, Input: "wedding"}, llm.Schema{}, &plan)
	assert.ErrorIs(t, err, llm.ErrNoContent)
}

func TestClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Complete(ctx, llm.Request{Task: llm.TaskClassifyIntent})
	assert.ErrorIs(t, err, context.Canceled)
}
