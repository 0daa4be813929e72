package planner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"eventplanner/internal/domain"
	"eventplanner/internal/llm"
	"eventplanner/internal/prompts"
	"eventplanner/internal/templates"
	"eventplanner/internal/tools"
)

// Retriever finds templates similar to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// RelevantRetriever finds the templates used as planning context for an
// event category.
type RelevantRetriever interface {
	GetRelevant(ctx context.Context, categoryHint, extra string) ([]domain.SearchResult, error)
}

// GuidelineSource looks up planning guidelines by event type.
type GuidelineSource interface {
	GuidelineFor(eventType string) (templates.Guideline, bool)
}

// Settings are the planner tunables. Zero values select the defaults.
type Settings struct {
	RetrieveTopK      int
	DefaultGuestCount int
	VenueCapacity     int
}

const (
	defaultRetrieveTopK = 3
	// DefaultGuestCount is assumed when neither the request nor the model gives one.
	DefaultGuestCount = 20
)

func (s Settings) withDefaults() Settings {
	if s.RetrieveTopK <= 0 {
		s.RetrieveTopK = defaultRetrieveTopK
	}
	if s.DefaultGuestCount <= 0 {
		s.DefaultGuestCount = DefaultGuestCount
	}
	if s.VenueCapacity <= 0 {
		s.VenueCapacity = tools.DefaultVenueCapacity
	}
	return s
}

// Deps are the collaborators of the planning stages.
type Deps struct {
	LLM        llm.Client
	Retriever  Retriever
	// Relevant supplies the RAG context of the planning stages. When nil,
	// Retriever is used if it implements RelevantRetriever.
	Relevant   RelevantRetriever
	Guidelines GuidelineSource
	Settings   Settings
}

var (
	extractionSchema = llm.MustSchemaFor[domain.EventExtraction]("event_extraction")
	planSchema       = llm.MustSchemaFor[domain.EventPlan]("event_plan")
)

// Stage names in execution order.
const (
	StageClassifyIntent = "classify_intent"
	StageExtractEvent   = "extract_event"
	StageRetrieve       = "retrieve_templates"
	StageRAGPlanning    = "rag_planning"
	StageBudget         = "calculate_budget"
	StageGuests         = "validate_guests"
	StageSchedule       = "build_schedule"
	StageFormat         = "format_output"
)

// NewDefault builds the standard eight-stage planning pipeline.
func NewDefault(d Deps) (*Pipeline, error) {
	return New(Stages(d)...)
}

// Stages returns the standard stage list bound to d.
func Stages(d Deps) []Stage {
	d.Settings = d.Settings.withDefaults()
	return []Stage{
		{Name: StageClassifyIntent, Reads: FieldUserInput, Writes: FieldIntent, Reaches: IntentClassified, Run: d.classifyIntent},
		{Name: StageExtractEvent, Reads: FieldUserInput, Writes: FieldExtraction, Reaches: Extracted, Run: d.extractEvent},
		{Name: StageRetrieve, Reads: FieldUserInput | FieldExtraction, Writes: FieldRetrieved, Reaches: Retrieved, Run: d.retrieve},
		{Name: StageRAGPlanning, Reads: FieldUserInput | FieldExtraction, Writes: FieldEnhancedPlan, Reaches: Enhanced, Run: d.enhance},
		{Name: StageBudget, Reads: FieldExtraction, Writes: FieldBudget, Reaches: BudgetComputed, Run: d.budget},
		{Name: StageGuests, Reads: FieldExtraction, Writes: FieldGuestList, Reaches: GuestsValidated, Run: d.guests},
		{Name: StageSchedule, Reads: FieldExtraction, Writes: FieldSchedule, Reaches: ScheduleBuilt, Run: d.schedule},
		{Name: StageFormat, Reads: FieldUserInput | FieldExtraction, Writes: FieldFinalPlan, Reaches: Formatted, Run: d.format},
	}
}

// requireExtraction is the shared precondition of every stage after extraction.
func requireExtraction(r *Record, stage string) (*domain.EventExtraction, Outcome, bool) {
	if r.Extraction == nil {
		return nil, Outcome{Status: StatusSkipped, Message: fmt.Sprintf("Skipped %s: no event extraction", stage)}, false
	}
	return r.Extraction, Outcome{}, true
}

func (d Deps) classifyIntent(ctx context.Context, r *Record) (Outcome, error) {
	text, err := d.LLM.Complete(ctx, prompts.ClassifyIntent(r.UserInput))
	if err != nil {
		return Outcome{}, fmt.Errorf("classify intent: %w", err)
	}
	intent := strings.ToLower(strings.TrimSpace(text))
	r.Intent = &intent
	return completed("Classified intent as: %s", intent), nil
}

func (d Deps) extractEvent(ctx context.Context, r *Record) (Outcome, error) {
	var ex domain.EventExtraction
	if err := d.LLM.CompleteJSON(ctx, prompts.ExtractEvent(r.UserInput), extractionSchema, &ex); err != nil {
		return Outcome{}, fmt.Errorf("extract event: %w", err)
	}
	normalizeExtraction(&ex)
	if ex.EventType == "" {
		zerolog.Ctx(ctx).Warn().Msg("extraction returned no event type")
		return degraded("Extraction returned no event type"), nil
	}
	r.Extraction = &ex
	guests := "unspecified"
	if ex.GuestCount != nil {
		guests = strconv.Itoa(*ex.GuestCount)
	}
	return completed("Extracted event: %s, Guests: %s", ex.EventType, guests), nil
}

// normalizeExtraction drops out-of-range values and replaces nil lists.
func normalizeExtraction(ex *domain.EventExtraction) {
	ex.EventType = strings.ToLower(strings.TrimSpace(ex.EventType))
	if ex.GuestCount != nil && *ex.GuestCount < 0 {
		ex.GuestCount = nil
	}
	if ex.Budget != nil && *ex.Budget < 0 {
		ex.Budget = nil
	}
	if ex.Date != nil && strings.TrimSpace(*ex.Date) == "" {
		ex.Date = nil
	}
	if ex.Preferences == nil {
		ex.Preferences = []string{}
	}
	if ex.Requirements == nil {
		ex.Requirements = []string{}
	}
}

func (d Deps) retrieve(ctx context.Context, r *Record) (Outcome, error) {
	ex, skip, ok := requireExtraction(r, StageRetrieve)
	if !ok {
		r.Retrieved = []domain.SearchResult{}
		return skip, nil
	}
	query := ex.EventType + " " + r.UserInput
	results, err := d.Retriever.Search(ctx, query, d.Settings.RetrieveTopK)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("template retrieval failed")
		r.Retrieved = []domain.SearchResult{}
		return degraded("Template retrieval failed; continuing without templates"), nil
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	r.Retrieved = results
	return completed("Retrieved %d similar event templates", len(results)), nil
}

func (d Deps) guidelines(eventType string) string {
	if d.Guidelines == nil {
		return prompts.Guidelines(nil)
	}
	g, ok := d.Guidelines.GuidelineFor(eventType)
	if !ok {
		return prompts.Guidelines(nil)
	}
	return prompts.Guidelines(g)
}

// relevantContext formats the templates relevant to the event as prompt
// context. Lookup failures other than cancellation yield prompts.NoTemplates.
func (d Deps) relevantContext(ctx context.Context, ex *domain.EventExtraction, input string) (string, int, error) {
	rel := d.Relevant
	if rel == nil {
		rel, _ = d.Retriever.(RelevantRetriever)
	}
	if rel == nil {
		return prompts.NoTemplates, 0, nil
	}
	results, err := rel.GetRelevant(ctx, ex.EventType, input)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("relevant template lookup failed")
		return prompts.NoTemplates, 0, nil
	}
	return prompts.FormatContext(results), len(results), nil
}

func (d Deps) enhance(ctx context.Context, r *Record) (Outcome, error) {
	ex, skip, ok := requireExtraction(r, StageRAGPlanning)
	if !ok {
		return skip, nil
	}
	ragContext, used, err := d.relevantContext(ctx, ex, r.UserInput)
	if err != nil {
		return Outcome{}, err
	}
	text, err := d.LLM.Complete(ctx, prompts.EnhancePlan(r.UserInput, ragContext, d.guidelines(ex.EventType), ex))
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("plan enhancement failed")
		return degraded("RAG enhancement failed; continuing without an enhanced plan"), nil
	}
	r.EnhancedPlan = &EnhancedPlan{Context: ragContext, Plan: text, TemplatesUsed: used}
	return completed("Generated RAG-enhanced plan using retrieved templates"), nil
}

func (d Deps) guestCount(ex *domain.EventExtraction) int {
	if ex.GuestCount != nil {
		return *ex.GuestCount
	}
	return d.Settings.DefaultGuestCount
}

func (d Deps) budget(_ context.Context, r *Record) (Outcome, error) {
	ex, skip, ok := requireExtraction(r, StageBudget)
	if !ok {
		return skip, nil
	}
	res := tools.Budget(d.guestCount(ex), ex.EventType, ex.Budget)
	r.Budget = &res
	return completed("Calculated budget: %.2f", res.TotalBudget), nil
}

func (d Deps) guests(_ context.Context, r *Record) (Outcome, error) {
	ex, skip, ok := requireExtraction(r, StageGuests)
	if !ok {
		return skip, nil
	}
	res := tools.CountGuests(tools.SampleGuests(d.guestCount(ex)), d.Settings.VenueCapacity)
	r.GuestList = &res
	return completed("%s", res.Message), nil
}

func (d Deps) schedule(_ context.Context, r *Record) (Outcome, error) {
	ex, skip, ok := requireExtraction(r, StageSchedule)
	if !ok {
		return skip, nil
	}
	r.Schedule = tools.ScheduleFor(ex.EventType)
	return completed("Created schedule with %d activities", len(r.Schedule)), nil
}

func (d Deps) format(ctx context.Context, r *Record) (Outcome, error) {
	ex, skip, ok := requireExtraction(r, StageFormat)
	if !ok {
		return skip, nil
	}
	ragContext, _, err := d.relevantContext(ctx, ex, r.UserInput)
	if err != nil {
		return Outcome{}, err
	}
	req := prompts.FinalPlan(r.UserInput, ragContext, d.guidelines(ex.EventType), ex)

	var plan domain.EventPlan
	if err := d.LLM.CompleteJSON(ctx, req, planSchema, &plan); err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		ev := zerolog.Ctx(ctx).Warn().Err(err)
		if errors.Is(err, llm.ErrNoContent) {
			ev = zerolog.Ctx(ctx).Info()
		}
		ev.Msg("structured plan unavailable, using fallback plan")
		r.FinalPlan = Fallback(ex, d.Settings.DefaultGuestCount)
		return degraded("Generated fallback event plan"), nil
	}
	if strings.TrimSpace(plan.EventType) == "" {
		zerolog.Ctx(ctx).Warn().Msg("structured plan missing event_type")
		return degraded("Structured plan was missing event_type; no plan produced"), nil
	}
	Finalize(&plan, ex, d.Settings.DefaultGuestCount)
	r.FinalPlan = &plan
	return completed("Generated final structured event plan"), nil
}
