// Package vectorstore holds the template similarity index and its storage backends.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eventplanner/internal/domain"
)

// DefaultTopK is used when a search asks for a non-positive number of results.
const DefaultTopK = 5

// relevantTopK is the fixed result count of GetRelevant.
const relevantTopK = 5

// ErrEmbeddingService marks failures of the external embedding call.
var ErrEmbeddingService = errors.New("embedding service failure")

// Index ranks stored templates by cosine similarity to a query.
type Index struct {
	embedder domain.Embedder
	store    Storage

	mu    sync.Mutex
	count int
	dim   int
}

// NewIndex creates an empty index backed by store.
func NewIndex(embedder domain.Embedder, store Storage) *Index {
	return &Index{embedder: embedder, store: store}
}

// Len returns the number of records added through this index.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.count
}

// Add embeds every template text in one batch and stores the records.
// On failure the index is left unchanged.
func (ix *Index) Add(ctx context.Context, templates []domain.Template) error {
	if len(templates) == 0 {
		return nil
	}
	texts := make([]string, len(templates))
	for i, t := range templates {
		texts[i] = t.Text
	}
	vecs, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEmbeddingService, ix.embedder.Name(), err)
	}
	if len(vecs) != len(templates) {
		return fmt.Errorf("%w: %s returned %d vectors for %d texts", ErrEmbeddingService, ix.embedder.Name(), len(vecs), len(templates))
	}

	records := make([]domain.TemplateRecord, len(templates))
	for i, t := range templates {
		records[i] = domain.TemplateRecord{Template: t, Embedding: vecs[i]}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.dim == 0 {
		if err := ix.store.Init(ctx, len(vecs[0])); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		ix.dim = len(vecs[0])
	}
	if err := ix.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("store templates: %w", err)
	}
	ix.count += len(records)
	return nil
}

// Search returns up to k templates most similar to query, best first.
// An empty index returns an empty result without calling the embedder.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if ix.Len() == 0 {
		return []domain.SearchResult{}, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}
	vec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmbeddingService, ix.embedder.Name(), err)
	}
	results, err := ix.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search templates: %w", err)
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetRelevant searches with a query built from a category hint and optional extra text.
func (ix *Index) GetRelevant(ctx context.Context, categoryHint, extra string) ([]domain.SearchResult, error) {
	return ix.Search(ctx, RelevantQuery(categoryHint, extra), relevantTopK)
}

// RelevantQuery composes the GetRelevant query string.
func RelevantQuery(categoryHint, extra string) string {
	q := categoryHint + " event planning"
	if extra != "" {
		q += " " + extra
	}
	return q
}
