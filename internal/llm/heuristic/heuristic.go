// Package heuristic is an offline llm.Client built on keyword rules.
// It classifies and extracts from the raw request and declines to write
// final plans, which makes the planner fall back to its minimal plan.
package heuristic

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"eventplanner/internal/domain"
	"eventplanner/internal/llm"
)

var keywordTypes = []struct {
	keywords  []string
	eventType string
}{
	{[]string{"baby shower"}, domain.EventBabyShower},
	{[]string{"birthday", "bday"}, domain.EventBirthdayParty},
	{[]string{"wedding", "reception", "marriage"}, domain.EventWedding},
	{[]string{"farewell", "send-off", "send off", "goodbye"}, domain.EventFarewellParty},
	{[]string{"anniversary"}, domain.EventAnniversary},
	{[]string{"corporate", "office", "team", "conference", "company"}, domain.EventCorporateEvent},
}

const (
	monthName  = `(?:january|february|march|april|may|june|july|august|september|october|november|december)`
	dayOfMonth = `\d{1,2}(?:st|nd|rd|th)?`
)

var (
	guestRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:people|guests|persons|attendees|pax)`)
	budgetRe = regexp.MustCompile(`(?i)(?:under|budget(?:\s+of)?|within|max(?:imum)?)\s*:?\s*(?:₹|rs\.?|inr|\$)?\s*([\d,]+(?:\.\d+)?)\s*(k\b)?`)
	// A date needs a day or a year next to the month so "I may need" is not one.
	dateRe   = regexp.MustCompile(`(?i)\b(?:on\s+)?((?:` + dayOfMonth + `\s+` + monthName + `|` + monthName + `\s+` + dayOfMonth + `)(?:,?\s+\d{4})?|` + monthName + `,?\s+\d{4})\b`)
	prefRe   = regexp.MustCompile(`(?i)\b(vegetarian|vegan|outdoor|indoor|formal|casual|theme[d]?\s+\w+|live music|dj|jain|halal|gluten[- ]free)\b`)
)

// Client implements llm.Client without any network calls.
type Client struct{}

func New() *Client { return &Client{} }

// Complete answers classification and free-text planning requests.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch req.Task {
	case llm.TaskClassifyIntent:
		return Classify(req.Input), nil
	case llm.TaskEnhancePlan:
		return draft(req.Input), nil
	default:
		return "", llm.ErrNoContent
	}
}

// CompleteJSON answers extraction requests. Final plans are left to the caller's fallback.
func (c *Client) CompleteJSON(ctx context.Context, req llm.Request, _ llm.Schema, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Task != llm.TaskExtractEvent {
		return llm.ErrNoContent
	}
	data, err := json.Marshal(Extract(req.Input))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Classify maps a request to an event category by keyword.
func Classify(input string) string {
	lower := strings.ToLower(input)
	for _, kt := range keywordTypes {
		for _, kw := range kt.keywords {
			if strings.Contains(lower, kw) {
				return kt.eventType
			}
		}
	}
	return domain.EventOther
}

// Extract pulls the event fields out of a request with regular expressions.
func Extract(input string) domain.EventExtraction {
	ex := domain.EventExtraction{
		EventType:    Classify(input),
		Preferences:  []string{},
		Requirements: []string{},
	}
	if m := guestRe.FindStringSubmatch(input); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			ex.GuestCount = &n
		}
	}
	if m := budgetRe.FindStringSubmatch(input); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			if m[2] != "" {
				v *= 1000
			}
			ex.Budget = &v
		}
	}
	if m := dateRe.FindStringSubmatch(input); m != nil {
		d := strings.TrimSpace(m[1])
		ex.Date = &d
	}
	for _, p := range prefRe.FindAllString(input, -1) {
		ex.Preferences = append(ex.Preferences, strings.ToLower(p))
	}
	return ex
}

func draft(input string) string {
	eventType := Classify(input)
	return fmt.Sprintf("Draft plan for a %s.\nRequest: %s\nFollow the timeline and budget ranges of the closest templates, then confirm venue, catering and decorations.",
		strings.ReplaceAll(eventType, "_", " "), strings.TrimSpace(input))
}
