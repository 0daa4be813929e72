package vectorstore

import (
	"context"

	"eventplanner/internal/domain"
)

// Storage persists template vectors and supports similarity search.
// Results are ordered by descending score; equal scores keep insertion order.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []domain.TemplateRecord) error
	Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error)
	Clear(ctx context.Context) error
}
