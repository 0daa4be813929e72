package domain

import "context"

// Template is a stored example event description used as retrieval context.
type Template struct {
	ID       string         `yaml:"id" json:"id"`
	Text     string         `yaml:"text" json:"text"`
	Metadata map[string]any `yaml:"metadata" json:"metadata"`
}

// TemplateRecord is a template together with the embedding computed when it was added.
type TemplateRecord struct {
	Template
	Embedding []float64
}

// SearchResult represents a matching template with a relevance score.
type SearchResult struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Embedder converts free text into numeric vectors.
// EmbedDocuments embeds a whole batch in one round-trip.
type Embedder interface {
	Name() string
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}
