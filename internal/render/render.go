// Package render turns planning results into styled terminal text.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"eventplanner/internal/domain"
	"eventplanner/internal/planner"
	"eventplanner/internal/summarizer"
	"eventplanner/internal/tools"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)

	unicodeWordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	sentenceRe    = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Record renders the stage log, the local tool results and the final plan of a run.
func Record(r *planner.Record) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Event plan") + mutedStyle.Render("  run "+r.RunID) + "\n\n")

	b.WriteString(sectionStyle.Render("Progress") + "\n")
	for i, msg := range r.Messages {
		status := planner.StatusCompleted
		if i < len(r.Trace) {
			status = r.Trace[i].Status
		}
		b.WriteString(statusMark(status) + " " + msg + "\n")
	}
	if n := len(r.Trace); n > len(r.Messages) && r.Trace[n-1].Status == planner.StatusFailed {
		b.WriteString(statusMark(planner.StatusFailed) + " " + r.Trace[n-1].Stage + ": " + r.Trace[n-1].Error + "\n")
	}

	if r.EnhancedPlan != nil {
		b.WriteString("\n" + sectionStyle.Render("Draft highlights") +
			mutedStyle.Render(fmt.Sprintf("  from %d templates", r.EnhancedPlan.TemplatesUsed)) + "\n")
		for _, h := range summarizer.Highlights(r.EnhancedPlan.Plan, summarizer.DefaultMaxHighlights) {
			b.WriteString("  • " + h + "\n")
		}
	}
	if r.Budget != nil {
		b.WriteString("\n" + Budget(*r.Budget))
	}
	if r.GuestList != nil {
		b.WriteString("\n" + Guests(*r.GuestList))
	}
	if len(r.Schedule) > 0 {
		b.WriteString("\n" + Schedule(r.Schedule))
	}
	b.WriteString("\n")
	if r.FinalPlan == nil {
		b.WriteString(warnStyle.Render("No structured plan was produced.") + "\n")
		return b.String()
	}
	b.WriteString(Plan(r.FinalPlan))
	return b.String()
}

func statusMark(s planner.Status) string {
	switch s {
	case planner.StatusCompleted:
		return okStyle.Render("✓")
	case planner.StatusSkipped:
		return mutedStyle.Render("-")
	case planner.StatusDegraded:
		return warnStyle.Render("!")
	default:
		return errorStyle.Render("✗")
	}
}

// Plan renders a structured event plan section by section. Empty sections are omitted.
func Plan(p *domain.EventPlan) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(humanize(p.EventType)) + "\n")
	if p.Date != nil {
		fmt.Fprintf(&b, "Date: %s\n", *p.Date)
	}
	if p.GuestCount != nil {
		fmt.Fprintf(&b, "Guests: %d\n", *p.GuestCount)
	}
	if p.BudgetTotal != nil {
		fmt.Fprintf(&b, "Budget: %s\n", money(*p.BudgetTotal))
	}

	if len(p.Schedule) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Schedule") + "\n")
		for _, s := range p.Schedule {
			line := fmt.Sprintf("  %-9s %s", s.Time, s.Activity)
			if s.DurationMinutes != nil {
				line += mutedStyle.Render(fmt.Sprintf(" (%d min)", *s.DurationMinutes))
			}
			b.WriteString(line + "\n")
		}
	}
	if len(p.BudgetBreakdown) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Budget breakdown") + "\n")
		for _, it := range p.BudgetBreakdown {
			fmt.Fprintf(&b, "  %-20s %12s\n", it.Category, money(it.Amount))
		}
	}
	if len(p.Menu) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Menu") + "\n")
		for _, m := range p.Menu {
			line := fmt.Sprintf("  %s %s", m.Name, mutedStyle.Render("["+m.Category+"]"))
			if m.EstimatedCost != nil {
				line += " " + money(*m.EstimatedCost)
			}
			b.WriteString(line + "\n")
		}
	}
	if len(p.VenueSuggestions) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Venues") + "\n")
		for _, v := range p.VenueSuggestions {
			fmt.Fprintf(&b, "  %s, %s (capacity %d, %s)\n", v.Name, v.Location, v.Capacity, money(v.EstimatedCost))
			if len(v.Features) > 0 {
				b.WriteString("    " + mutedStyle.Render(strings.Join(v.Features, ", ")) + "\n")
			}
		}
	}
	if len(p.DecorationPlan) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Decorations") + "\n")
		for _, d := range p.DecorationPlan {
			fmt.Fprintf(&b, "  %s x%d %s [%s]\n", d.Item, d.Quantity, money(d.EstimatedCost), d.Priority)
		}
	}

	shopping := p.ShoppingList
	if len(shopping) == 0 {
		shopping = tools.ShoppingListFromPlan(p)
	}
	if len(shopping) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Shopping list") + "\n")
		for _, s := range shopping {
			price := "-"
			if s.EstimatedPrice != nil {
				price = money(*s.EstimatedPrice)
			}
			fmt.Fprintf(&b, "  [%s] %s %s %s\n", s.Priority, s.Item, mutedStyle.Render(s.Quantity), price)
		}
	}
	if len(p.Recommendations) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Recommendations") + "\n")
		for _, r := range p.Recommendations {
			b.WriteString("  • " + r + "\n")
		}
	}
	if p.Notes != nil && *p.Notes != "" {
		b.WriteString("\n" + mutedStyle.Render(*p.Notes) + "\n")
	}
	return b.String()
}

// Budget renders a budget split.
func Budget(res tools.BudgetResult) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Budget %s for %d guests", money(res.TotalBudget), res.GuestCount)) + "\n")
	for _, l := range res.Breakdown {
		fmt.Fprintf(&b, "  %-14s %12s\n", l.Category, money(l.Amount))
	}
	return b.String()
}

// Guests renders a capacity check.
func Guests(res tools.GuestListResult) string {
	style := okStyle
	if !res.WithinCapacity {
		style = warnStyle
	}
	return sectionStyle.Render("Guests") + "\n  " + style.Render(res.Message) + "\n"
}

// Schedule renders a canned timeline.
func Schedule(slots []tools.ScheduleSlot) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Timeline") + "\n")
	for _, s := range slots {
		fmt.Fprintf(&b, "  %-9s %s\n", s.Time, s.Activity)
	}
	return b.String()
}

// Menu renders a menu cost estimate.
func Menu(est tools.MenuEstimate) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Menu for %d guests", est.GuestCount)) + "\n")
	for _, it := range est.Items {
		fmt.Fprintf(&b, "  %-20s %12s\n", it.Item, money(it.Cost))
	}
	fmt.Fprintf(&b, "  %-20s %12s\n", "total", money(est.TotalEstimatedCost))
	return b.String()
}

// Results renders ranked templates, highlighting the sentence closest to query.
func Results(results []domain.SearchResult, query string) string {
	if len(results) == 0 {
		return mutedStyle.Render("No templates found.") + "\n"
	}
	var b strings.Builder
	for i, r := range results {
		title := fmt.Sprintf("Template %d/%d  score=%.3f", i+1, len(results), r.Score)
		if et, ok := r.Metadata["event_type"].(string); ok {
			title += "  " + mutedStyle.Render(et)
		}
		b.WriteString(titleStyle.Render(title) + "\n")
		b.WriteString(HighlightBestSentence(r.Text, query) + "\n\n")
	}
	return b.String()
}

// HighlightBestSentence styles the sentence of text sharing the most tokens with query.
func HighlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(strings.ReplaceAll(s, "_", " ")), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	for t := range toTokenSet(sentence) {
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

func money(v float64) string { return fmt.Sprintf("₹%.2f", v) }

func humanize(eventType string) string {
	words := strings.Fields(strings.ReplaceAll(eventType, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
