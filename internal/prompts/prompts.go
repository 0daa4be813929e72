// Package prompts builds the model requests issued by the planning stages.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"eventplanner/internal/domain"
	"eventplanner/internal/llm"
)

// NoTemplates is the retrieval context used when nothing was retrieved.
const NoTemplates = "No templates found."

const classifyTemplate = `You are an AI event planning assistant. Analyze the user's input and classify their intent.

User Input: %s

Classify the intent into one of these categories:
%s

Respond with only the category name.`

const extractTemplate = `Extract structured information from the user's event planning request.

User Input: %s

Extract the following information:
1. Event type, as one of: %s
2. Date (if mentioned)
3. Number of guests (if mentioned)
4. Budget (if mentioned)
5. Any specific requirements or preferences

Leave fields out when the request does not mention them.`

const enhanceSystem = `You are an expert event planner. Use the retrieved templates and context to create a comprehensive event plan.

Retrieved Templates:
%s

Template Guidelines:
%s

User Request: %s
Extracted Information: %s

Create a detailed event plan using the templates as guidance, but customize it for the specific user requirements.`

const finalSystem = `You are an expert event planner. Use the retrieved templates to create a comprehensive, structured event plan.

Retrieved Templates:
%s

Template Guidelines:
%s

Extracted Information:
%s

CRITICAL REQUIREMENTS - YOU MUST FILL ALL FIELDS:

1. guest_count: ALWAYS provide an integer. If not specified, use a reasonable default (20-50 based on event type).
2. schedule: at least 5-8 time slots covering arrival, main activities, meals, key moments and departure. Format times as "HH:MM AM/PM".
3. budget_breakdown: at least 5-6 categories with realistic amounts (food and catering, venue, decorations, entertainment, photography, miscellaneous).
4. menu: 8-12 items across appetizers, main course, desserts and beverages, with estimated costs.
5. venue_suggestions: 3-5 venues whose capacity fits guest_count, with cost, location and features.
6. decoration_plan: 5-8 items with quantity, estimated cost and priority (essential/optional).
7. shopping_list: 8-15 items with quantity, estimated_price and priority.
8. guests: include names only if the request mentions them.
9. recommendations: 3-5 practical tips.

Do not leave any list empty. Use realistic local pricing.`

const finalUser = `User Request: %s

Generate a COMPLETE and DETAILED event plan. Fill ALL fields with realistic, comprehensive information. Do not leave any lists empty.`

// ClassifyIntent asks for one category name.
func ClassifyIntent(input string) llm.Request {
	cats := make([]string, len(domain.EventCategories))
	for i, c := range domain.EventCategories {
		cats[i] = "- " + c
	}
	return llm.Request{
		Task:  llm.TaskClassifyIntent,
		User:  fmt.Sprintf(classifyTemplate, input, strings.Join(cats, "\n")),
		Input: input,
	}
}

// ExtractEvent asks for an EventExtraction.
func ExtractEvent(input string) llm.Request {
	return llm.Request{
		Task:  llm.TaskExtractEvent,
		User:  fmt.Sprintf(extractTemplate, input, strings.Join(domain.EventCategories, ", ")),
		Input: input,
	}
}

// EnhancePlan asks for a free-text plan conditioned on the retrieved context.
func EnhancePlan(input, context, guidelines string, ex *domain.EventExtraction) llm.Request {
	return llm.Request{
		Task:   llm.TaskEnhancePlan,
		System: fmt.Sprintf(enhanceSystem, context, guidelines, input, toJSON(ex, false)),
		User:   input,
		Input:  input,
	}
}

// FinalPlan asks for the complete structured EventPlan.
func FinalPlan(input, context, guidelines string, ex *domain.EventExtraction) llm.Request {
	return llm.Request{
		Task:   llm.TaskGeneratePlan,
		System: fmt.Sprintf(finalSystem, context, guidelines, toJSON(ex, false)),
		User:   fmt.Sprintf(finalUser, input),
		Input:  input,
	}
}

// FormatContext renders retrieved templates for a prompt.
func FormatContext(results []domain.SearchResult) string {
	if len(results) == 0 {
		return NoTemplates
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Template %d:\nDescription: %s\nMetadata: %s\nRelevance Score: %.3f\n",
			i+1, r.Text, toJSON(r.Metadata, true), r.Score)
	}
	return strings.Join(parts, "\n")
}

// Guidelines renders guideline data as indented JSON; nil renders as "{}".
func Guidelines(v any) string {
	if v == nil {
		return "{}"
	}
	return toJSON(v, true)
}

func toJSON(v any, indent bool) string {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return "{}"
	}
	return string(b)
}
