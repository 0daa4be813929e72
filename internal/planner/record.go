package planner

import (
	"time"

	"eventplanner/internal/domain"
	"eventplanner/internal/tools"
)

// EnhancedPlan is the free-text plan produced from the retrieved templates.
type EnhancedPlan struct {
	Context       string `json:"rag_context"`
	Plan          string `json:"enhanced_plan"`
	TemplatesUsed int    `json:"templates_used"`
}

// Record is the state threaded through every stage of one run.
// Each field is written by exactly one stage; Messages only grows.
type Record struct {
	RunID     string `json:"run_id"`
	UserInput string `json:"user_input"`

	Intent       *string                 `json:"intent,omitempty"`
	Extraction   *domain.EventExtraction `json:"event_extraction,omitempty"`
	Retrieved    []domain.SearchResult   `json:"retrieved_templates,omitempty"`
	EnhancedPlan *EnhancedPlan           `json:"rag_enhanced_plan,omitempty"`
	Budget       *tools.BudgetResult     `json:"budget_result,omitempty"`
	GuestList    *tools.GuestListResult  `json:"guest_list_result,omitempty"`
	Schedule     []tools.ScheduleSlot    `json:"schedule,omitempty"`
	FinalPlan    *domain.EventPlan       `json:"final_plan,omitempty"`

	Messages []string     `json:"messages"`
	State    State        `json:"state"`
	Trace    []StageTrace `json:"trace"`
}

// StageTrace records how one stage ended.
type StageTrace struct {
	Stage    string        `json:"stage"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}
