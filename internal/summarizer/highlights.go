// Package summarizer picks the most representative sentences of free-text plans.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxHighlights is used when Highlights is asked for a non-positive count.
const DefaultMaxHighlights = 5

var (
	tokenPattern  = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	sentencePat   = regexp.MustCompile(`(?U)[^.!?]+(?:[.!?]|$)`)
	markupPrefix  = regexp.MustCompile(`^\s*(?:#{1,6}\s+|[-*•]\s+|\d+[.)]\s+)`)
	emphasisMarks = strings.NewReplacer("**", "", "__", "", "`", "")
	stopwords     = defaultStopwords()
)

// Highlights ranks the sentences of text by normalized token frequency and
// returns the best max of them in their original order. Markdown headings,
// bullets and emphasis are stripped first.
func Highlights(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxHighlights
	}
	sentences := split(text)
	if len(sentences) == 0 {
		return nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			if _, ok := stopwords[tok]; !ok {
				freq[tok]++
			}
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		s := 0.0
		for _, tok := range toks {
			s += freq[tok]
		}
		if maxF > 0 && len(toks) > 0 {
			// Length normalization keeps long run-on lines from dominating.
			s /= maxF * math.Sqrt(float64(len(toks)))
		}
		scores[i] = pair{i, s}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if max > len(scores) {
		max = len(scores)
	}
	selected := make([]int, max)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return out
}

func split(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = emphasisMarks.Replace(markupPrefix.ReplaceAllString(line, ""))
		for _, s := range sentencePat.FindAllString(line, -1) {
			if s = strings.TrimSpace(s); len(tokens(s)) > 0 {
				out = append(out, s)
			}
		}
	}
	return out
}

func tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
