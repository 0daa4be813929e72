package cached

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	docCalls   [][]string
	queryCalls []string
	err        error
}

func (c *countingEmbedder) Name() string { return "fake" }

func (c *countingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float64, error) {
	c.docCalls = append(c.docCalls, append([]string(nil), texts...))
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t)), 1}
	}
	return out, nil
}

func (c *countingEmbedder) EmbedQuery(_ context.Context, text string) ([]float64, error) {
	c.queryCalls = append(c.queryCalls, text)
	if c.err != nil {
		return nil, c.err
	}
	return []float64{float64(len(text)), 2}, nil
}

type mapStore struct {
	mu     sync.Mutex
	m      map[string][]float64
	getErr error
	putErr error
}

func newMapStore() *mapStore { return &mapStore{m: map[string][]float64{}} }

func (s *mapStore) Get(_ context.Context, key string) ([]float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *mapStore) Put(_ context.Context, key string, vec []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.m[key] = vec
	return nil
}

func (s *mapStore) Close() error { return nil }

func TestEmbedDocuments_OnlyMissesReachInner(t *testing.T) {
	inner := &countingEmbedder{}
	store := newMapStore()
	e := New(inner, store, "test")
	ctx := context.Background()

	first, err := e.EmbedDocuments(ctx, []string{"a", "bb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1}, {2, 1}}, first)

	second, err := e.EmbedDocuments(ctx, []string{"bb", "ccc", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1}, {3, 1}, {1, 1}}, second)

	require.Len(t, inner.docCalls, 2)
	assert.Equal(t, []string{"ccc"}, inner.docCalls[1])

	_, err = e.EmbedDocuments(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Len(t, inner.docCalls, 2, "fully cached batch must not call the inner embedder")
}

func TestEmbedQuery_Cached(t *testing.T) {
	inner := &countingEmbedder{}
	e := New(inner, newMapStore(), "test")

	for range 3 {
		vec, err := e.EmbedQuery(context.Background(), "wedding")
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 2}, vec)
	}
	assert.Equal(t, []string{"wedding"}, inner.queryCalls)
}

func TestCacheFailuresDegradeToInner(t *testing.T) {
	inner := &countingEmbedder{}
	store := newMapStore()
	store.getErr = errors.New("read down")
	store.putErr = errors.New("write down")
	e := New(inner, store, "test")

	vecs, err := e.EmbedDocuments(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1}}, vecs)

	_, err = e.EmbedQuery(context.Background(), "x")
	require.NoError(t, err)
}

type emptyEmbedder struct{ countingEmbedder }

func (e *emptyEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	_, _ = e.countingEmbedder.EmbedQuery(ctx, text)
	return []float64{}, nil
}

func TestEmptyVectorsAreNotCached(t *testing.T) {
	inner := &emptyEmbedder{}
	store := newMapStore()
	e := New(inner, store, "test")

	for range 2 {
		vec, err := e.EmbedQuery(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, vec)
	}
	assert.Equal(t, []string{"", ""}, inner.queryCalls)
	assert.Empty(t, store.m)
}

func TestInnerErrorPropagates(t *testing.T) {
	boom := errors.New("service down")
	e := New(&countingEmbedder{err: boom}, newMapStore(), "test")

	_, err := e.EmbedDocuments(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)
	_, err = e.EmbedQuery(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "fake", e.Name())
}
