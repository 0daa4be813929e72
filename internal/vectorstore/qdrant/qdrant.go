package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"eventplanner/internal/domain"
)

// pointNamespace scopes the deterministic point ids derived from template ids.
var pointNamespace = uuid.MustParse("6f1c2f0e-8a52-4d43-9a5e-3e8f2a0b7c11")

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	// next is the insertion ordinal of the next upserted point; it breaks
	// score ties in Search.
	next       int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	err := s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusConflict {
		// Collection already exists.
		return nil
	}
	return err
}

// PointID returns the stable Qdrant point id for a template, so re-adding the
// seed set on every run overwrites instead of duplicating.
func PointID(t domain.Template) string {
	return uuid.NewSHA1(pointNamespace, []byte(t.ID+"\x00"+t.Text)).String()
}

func (s *Storage) Upsert(ctx context.Context, records []domain.TemplateRecord) error {
	points := make([]map[string]any, len(records))
	for i, r := range records {
		if s.dimension > 0 && len(r.Embedding) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(r.Embedding), s.dimension)
		}
		points[i] = map[string]any{
			"id":     PointID(r.Template),
			"vector": r.Embedding,
			"payload": map[string]any{
				"template_id": r.ID,
				"text":        r.Text,
				"metadata":    r.Metadata,
				"ordinal":     s.next + i,
			},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil); err != nil {
		return err
	}
	s.next += len(records)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				Text     string         `json:"text"`
				Metadata map[string]any `json:"metadata"`
				Ordinal  int            `json:"ordinal"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	hits := resp.Result
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Payload.Ordinal < hits[j].Payload.Ordinal
	})
	results := make([]domain.SearchResult, 0, len(hits))
	for _, r := range hits {
		results = append(results, domain.SearchResult{
			Text:     r.Payload.Text,
			Metadata: r.Payload.Metadata,
			Score:    r.Score,
		})
	}
	return results, nil
}

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear(ctx context.Context) error {
	s.dimension = 0
	s.next = 0
	err := s.do(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, nil)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return nil
	}
	return err
}

type statusError struct {
	method string
	url    string
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("qdrant %s %s failed: %s", e.method, e.url, e.status)
	}
	return fmt.Sprintf("qdrant %s %s failed: %s: %s", e.method, e.url, e.status, e.body)
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{method: method, url: url, code: resp.StatusCode, status: resp.Status, body: string(bytes.TrimSpace(msg))}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
