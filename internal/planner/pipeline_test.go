package planner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/domain"
	"eventplanner/internal/embedding/tfidf"
	"eventplanner/internal/llm"
	"eventplanner/internal/templates"
	"eventplanner/internal/tools"
	"eventplanner/internal/vectorstore"
	"eventplanner/internal/vectorstore/memory"
)

// scriptedLLM answers by task; a missing answer returns ErrNoContent.
type scriptedLLM struct {
	text  map[llm.Task]string
	json  map[llm.Task]string
	errs  map[llm.Task]error
	calls []llm.Request
}

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls = append(s.calls, req)
	if err := s.errs[req.Task]; err != nil {
		return "", err
	}
	if t, ok := s.text[req.Task]; ok {
		return t, nil
	}
	return "", llm.ErrNoContent
}

func (s *scriptedLLM) CompleteJSON(_ context.Context, req llm.Request, _ llm.Schema, out any) error {
	s.calls = append(s.calls, req)
	if err := s.errs[req.Task]; err != nil {
		return err
	}
	body, ok := s.json[req.Task]
	if !ok {
		return llm.ErrNoContent
	}
	return llm.DecodeJSON(body, out)
}

type fakeRetriever struct {
	results  []domain.SearchResult
	err      error
	queries  []string
	ks       []int
	relevant []string
}

func (f *fakeRetriever) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	f.queries = append(f.queries, query)
	f.ks = append(f.ks, k)
	return f.results, f.err
}

func (f *fakeRetriever) GetRelevant(_ context.Context, hint, extra string) ([]domain.SearchResult, error) {
	f.relevant = append(f.relevant, vectorstore.RelevantQuery(hint, extra))
	return f.results, f.err
}

func birthdayLLM() *scriptedLLM {
	return &scriptedLLM{
		text: map[llm.Task]string{
			llm.TaskClassifyIntent: "  Birthday_Party\n",
			llm.TaskEnhancePlan:    "Start with games, then dinner and cake.",
		},
		json: map[llm.Task]string{
			llm.TaskExtractEvent: `{"event_type":"birthday_party","guest_count":30}`,
			llm.TaskGeneratePlan: `{"event_type":"birthday_party","shopping_list":[{"item":"Balloons","quantity":"50","priority":"essential"}]}`,
		},
	}
}

func retrieverWithTemplate() *fakeRetriever {
	return &fakeRetriever{results: []domain.SearchResult{
		{Text: "Birthday party for 30 people", Metadata: map[string]any{"event_type": "birthday_party"}, Score: 0.9},
	}}
}

func TestRun_BirthdayScenario(t *testing.T) {
	model := birthdayLLM()
	ret := retrieverWithTemplate()
	cat, err := templates.Default()
	require.NoError(t, err)

	p, err := NewDefault(Deps{LLM: model, Retriever: ret, Guidelines: cat})
	require.NoError(t, err)

	r, err := p.Run(context.Background(), "Plan a birthday party for 30 people")
	require.NoError(t, err)

	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, Formatted, r.State)
	assert.Equal(t, "birthday_party", *r.Intent)
	assert.Equal(t, 30, *r.Extraction.GuestCount)

	assert.Equal(t, []string{"birthday_party Plan a birthday party for 30 people"}, ret.queries)
	assert.Equal(t, []int{3}, ret.ks)
	assert.Len(t, r.Retrieved, 1)
	q := "birthday_party event planning Plan a birthday party for 30 people"
	assert.Equal(t, []string{q, q}, ret.relevant, "enhance and format each look up relevant templates")

	require.NotNil(t, r.EnhancedPlan)
	assert.Equal(t, 1, r.EnhancedPlan.TemplatesUsed)
	assert.Contains(t, r.EnhancedPlan.Context, "Template 1:")

	require.NotNil(t, r.Budget)
	assert.Equal(t, 15000.0, r.Budget.TotalBudget)
	wantBreakdown := []tools.BudgetLine{
		{Category: "food", Amount: 6000},
		{Category: "venue", Amount: 3750},
		{Category: "decor", Amount: 3000},
		{Category: "entertainment", Amount: 1500},
		{Category: "misc", Amount: 750},
	}
	if diff := cmp.Diff(wantBreakdown, r.Budget.Breakdown); diff != "" {
		t.Fatalf("breakdown mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, r.GuestList)
	assert.True(t, r.GuestList.WithinCapacity)
	assert.Len(t, r.Schedule, 5)

	require.NotNil(t, r.FinalPlan)
	assert.Equal(t, 30, *r.FinalPlan.GuestCount, "guest_count is filled from the extraction")
	require.Len(t, r.FinalPlan.ShoppingList, 1)
	require.NotNil(t, r.FinalPlan.ShoppingList[0].EstimatedPrice)
	assert.Equal(t, 0.0, *r.FinalPlan.ShoppingList[0].EstimatedPrice)

	assert.Equal(t, []string{
		"Classified intent as: birthday_party",
		"Extracted event: birthday_party, Guests: 30",
		"Retrieved 1 similar event templates",
		"Generated RAG-enhanced plan using retrieved templates",
		"Calculated budget: 15000.00",
		"30 guests. Within capacity of 50.",
		"Created schedule with 5 activities",
		"Generated final structured event plan",
	}, r.Messages)
	require.Len(t, r.Trace, 8)
	for _, tr := range r.Trace {
		assert.Equal(t, StatusCompleted, tr.Status, tr.Stage)
	}

	last := model.calls[len(model.calls)-1]
	assert.Equal(t, llm.TaskGeneratePlan, last.Task)
	assert.Contains(t, last.System, "Relevance Score: 0.900")
	assert.Contains(t, last.System, "cake")
}

func TestRun_ExtractionAbsentReachesTerminal(t *testing.T) {
	model := birthdayLLM()
	model.json[llm.TaskExtractEvent] = `{"event_type":""}`
	ret := retrieverWithTemplate()

	p, err := NewDefault(Deps{LLM: model, Retriever: ret})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "???")
	require.NoError(t, err)

	assert.Equal(t, Formatted, r.State)
	assert.Nil(t, r.Extraction)
	assert.NotNil(t, r.Retrieved)
	assert.Empty(t, r.Retrieved)
	assert.Nil(t, r.EnhancedPlan)
	assert.Nil(t, r.Budget)
	assert.Nil(t, r.GuestList)
	assert.Nil(t, r.Schedule)
	assert.Nil(t, r.FinalPlan)
	assert.Len(t, r.Messages, 8, "every stage logs exactly once")
	assert.Empty(t, ret.queries)
	assert.Empty(t, ret.relevant)

	for _, tr := range r.Trace[2:] {
		assert.Equal(t, StatusSkipped, tr.Status, tr.Stage)
	}
	assert.Equal(t, "Skipped format_output: no event extraction", r.Messages[7])
}

func TestRun_ClassificationFailurePropagates(t *testing.T) {
	boom := errors.New("service unavailable")
	model := birthdayLLM()
	model.errs = map[llm.Task]error{llm.TaskClassifyIntent: boom}

	p, err := NewDefault(Deps{LLM: model, Retriever: retrieverWithTemplate()})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "Plan a birthday party")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, r)
	assert.Nil(t, r.FinalPlan)
	assert.Equal(t, Start, r.State)
	assert.Empty(t, r.Messages)
	require.Len(t, r.Trace, 1)
	assert.Equal(t, StatusFailed, r.Trace[0].Status)
}

func TestRun_ExtractionFailurePropagates(t *testing.T) {
	boom := errors.New("schema rejected")
	model := birthdayLLM()
	model.errs = map[llm.Task]error{llm.TaskExtractEvent: boom}

	p, err := NewDefault(Deps{LLM: model, Retriever: retrieverWithTemplate()})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "Plan a birthday party")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, IntentClassified, r.State)
	assert.Nil(t, r.FinalPlan)
}

func TestRun_DegradedExternalCalls(t *testing.T) {
	model := birthdayLLM()
	model.errs = map[llm.Task]error{
		llm.TaskEnhancePlan:  errors.New("timeout"),
		llm.TaskGeneratePlan: errors.New("bad json"),
	}
	ret := &fakeRetriever{err: errors.New("embedding down")}

	p, err := NewDefault(Deps{LLM: model, Retriever: ret})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "Plan a birthday party")
	require.NoError(t, err)

	assert.Equal(t, Formatted, r.State)
	assert.Empty(t, r.Retrieved)
	assert.Nil(t, r.EnhancedPlan)
	require.NotNil(t, r.FinalPlan)
	assert.Equal(t, "birthday_party", r.FinalPlan.EventType)
	assert.Equal(t, 30, *r.FinalPlan.GuestCount)
	assert.Empty(t, r.FinalPlan.Schedule)
	assert.Equal(t, "Generated fallback event plan", r.Messages[7])
	assert.Equal(t, StatusDegraded, r.Trace[2].Status)
	assert.Equal(t, StatusDegraded, r.Trace[3].Status)
	assert.Equal(t, StatusDegraded, r.Trace[7].Status)
	assert.Contains(t, model.calls[len(model.calls)-1].System, "No templates found.")
}

func TestRun_RelevantLookupFailureUsesNoTemplates(t *testing.T) {
	model := birthdayLLM()
	ret := retrieverWithTemplate()
	rel := &fakeRetriever{err: errors.New("embedding down")}

	p, err := NewDefault(Deps{LLM: model, Retriever: ret, Relevant: rel})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "Plan a birthday party for 30 people")
	require.NoError(t, err)

	assert.Len(t, r.Retrieved, 1)
	assert.Empty(t, ret.relevant, "an explicit Relevant replaces the retriever")
	assert.Len(t, rel.relevant, 2)
	require.NotNil(t, r.EnhancedPlan)
	assert.Equal(t, "No templates found.", r.EnhancedPlan.Context)
	assert.Equal(t, 0, r.EnhancedPlan.TemplatesUsed)
	assert.Equal(t, StatusCompleted, r.Trace[3].Status)
	require.NotNil(t, r.FinalPlan)
}

type recordingStore struct {
	*memory.Storage
	ks []int
}

func (s *recordingStore) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.ks = append(s.ks, topK)
	return s.Storage.Search(ctx, vector, topK)
}

type recordingEmbedder struct {
	*tfidf.Embedder
	queries []string
}

func (e *recordingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	e.queries = append(e.queries, text)
	return e.Embedder.EmbedQuery(ctx, text)
}

func TestRun_PlanningContextUsesRelevantTemplates(t *testing.T) {
	cat, err := templates.Default()
	require.NoError(t, err)
	emb := &recordingEmbedder{Embedder: tfidf.NewEmbedder()}
	store := &recordingStore{Storage: memory.NewStorage()}
	ix := vectorstore.NewIndex(emb, store)
	require.NoError(t, ix.Add(context.Background(), cat.Templates))

	model := birthdayLLM()
	p, err := NewDefault(Deps{LLM: model, Retriever: ix, Guidelines: cat})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "Plan a birthday party for 30 people")
	require.NoError(t, err)

	q := "birthday_party event planning Plan a birthday party for 30 people"
	assert.Equal(t, []string{"birthday_party Plan a birthday party for 30 people", q, q}, emb.queries)
	assert.Equal(t, []int{3, 5, 5}, store.ks)
	assert.Len(t, r.Retrieved, 3)
	require.NotNil(t, r.EnhancedPlan)
	assert.Equal(t, 5, r.EnhancedPlan.TemplatesUsed)
	assert.Contains(t, r.EnhancedPlan.Context, "Template 5:")
	assert.Contains(t, model.calls[len(model.calls)-1].System, "Template 5:")
}

func TestRun_EmptyPlanUsesFallback(t *testing.T) {
	model := birthdayLLM()
	delete(model.json, llm.TaskGeneratePlan)
	model.json[llm.TaskExtractEvent] = `{"event_type":"wedding","date":"12 March","budget":500000}`

	p, err := NewDefault(Deps{LLM: model, Retriever: &fakeRetriever{}})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "wedding")
	require.NoError(t, err)

	want := &domain.EventPlan{
		EventType:        "wedding",
		Date:             ptr("12 March"),
		GuestCount:       ptr(20),
		BudgetTotal:      ptr(500000.0),
		Guests:           []domain.Guest{},
		Schedule:         []domain.ScheduleItem{},
		BudgetBreakdown:  []domain.BudgetItem{},
		Menu:             []domain.MenuItem{},
		VenueSuggestions: []domain.VenueSuggestion{},
		DecorationPlan:   []domain.DecorationItem{},
		ShoppingList:     []domain.ShoppingListItem{},
		Recommendations:  []string{},
	}
	if diff := cmp.Diff(want, r.FinalPlan); diff != "" {
		t.Fatalf("fallback plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Retrieved 0 similar event templates", r.Messages[2])
	assert.Contains(t, r.EnhancedPlan.Context, "No templates found.")
}

func TestRun_MalformedPlanLeavesFinalPlanUnset(t *testing.T) {
	model := birthdayLLM()
	model.json[llm.TaskGeneratePlan] = `{"guest_count":12}`

	p, err := NewDefault(Deps{LLM: model, Retriever: &fakeRetriever{}})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "birthday")
	require.NoError(t, err)
	assert.Nil(t, r.FinalPlan)
	assert.Equal(t, Formatted, r.State)
	assert.Equal(t, StatusDegraded, r.Trace[7].Status)
}

func TestRun_SettingsApplied(t *testing.T) {
	model := birthdayLLM()
	model.json[llm.TaskExtractEvent] = `{"event_type":"corporate_event"}`
	ret := &fakeRetriever{}

	p, err := NewDefault(Deps{LLM: model, Retriever: ret, Settings: Settings{RetrieveTopK: 7, DefaultGuestCount: 60, VenueCapacity: 40}})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "company offsite")
	require.NoError(t, err)

	assert.Equal(t, []int{7}, ret.ks)
	assert.Equal(t, 60000.0, r.Budget.TotalBudget)
	assert.False(t, r.GuestList.WithinCapacity)
	assert.Equal(t, "60 guests. Exceeds capacity of 40.", r.GuestList.Message)
}

func TestRun_UndeclaredWriteRejected(t *testing.T) {
	sneaky := Stage{
		Name: "sneaky", Reads: FieldUserInput, Writes: FieldIntent, Reaches: IntentClassified,
		Run: func(_ context.Context, r *Record) (Outcome, error) {
			s := "x"
			r.Intent = &s
			r.FinalPlan = &domain.EventPlan{EventType: "x"}
			return completed("done"), nil
		},
	}
	p, err := New(sneaky)
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "x")
	require.ErrorIs(t, err, ErrUndeclaredWrite)
	assert.Contains(t, err.Error(), "final_plan")
	require.Len(t, r.Trace, 1)
	assert.Equal(t, "sneaky", r.Trace[0].Stage)
	assert.Equal(t, StatusFailed, r.Trace[0].Status)
	assert.Contains(t, r.Trace[0].Error, "final_plan")
	assert.Equal(t, Start, r.State)

	chatty := Stage{
		Name: "chatty", Writes: FieldIntent, Reaches: IntentClassified,
		Run: func(_ context.Context, r *Record) (Outcome, error) {
			r.Messages = append(r.Messages, "extra")
			return completed("done"), nil
		},
	}
	p, err = New(chatty)
	require.NoError(t, err)
	r, err = p.Run(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUndeclaredWrite)
	require.Len(t, r.Trace, 1)
	assert.Equal(t, StatusFailed, r.Trace[0].Status)
}

func TestRun_CanceledContextStopsDegradableStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := birthdayLLM()
	ret := &fakeRetriever{err: errors.New("canceled")}
	p, err := NewDefault(Deps{LLM: model, Retriever: cancelingRetriever{ret, cancel}})
	require.NoError(t, err)

	r, err := p.Run(ctx, "birthday")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Extracted, r.State)
}

type cancelingRetriever struct {
	*fakeRetriever
	cancel context.CancelFunc
}

func (c cancelingRetriever) Search(ctx context.Context, q string, k int) ([]domain.SearchResult, error) {
	c.cancel()
	return c.fakeRetriever.Search(ctx, q, k)
}

func TestRecord_JSON(t *testing.T) {
	p, err := NewDefault(Deps{LLM: birthdayLLM(), Retriever: retrieverWithTemplate()})
	require.NoError(t, err)
	r, err := p.Run(context.Background(), "Plan a birthday party for 30 people")
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "formatted", doc["state"])
	assert.Contains(t, doc, "final_plan")
	assert.Contains(t, doc, "budget_result")
}

func ptr[T any](v T) *T { return &v }
