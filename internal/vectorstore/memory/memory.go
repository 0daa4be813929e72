package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"eventplanner/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	records   []domain.TemplateRecord
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.records = nil
	return nil
}

func (s *Storage) Upsert(_ context.Context, records []domain.TemplateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Embedding) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(r.Embedding), s.dimension)
		}
	}
	s.records = append(s.records, records...)
	return nil
}

// Search ranks every record against vector. Zero norms are floored to 1, so an
// all-zero vector scores 0 against anything.
func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return []domain.SearchResult{}, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}
	qn := norm(vector)
	scores := make([]float64, len(s.records))
	for i, r := range s.records {
		scores[i] = dot(vector, r.Embedding) / (qn * norm(r.Embedding))
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		r := s.records[j]
		results = append(results, domain.SearchResult{Text: r.Text, Metadata: r.Metadata, Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Len returns the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	n := math.Sqrt(dot(v, v))
	if n == 0 {
		return 1
	}
	return n
}

// argsortDesc orders indexes by descending value; ties keep their original order.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
