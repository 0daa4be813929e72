package memory

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/domain"
)

func rec(text string, vec ...float64) domain.TemplateRecord {
	return domain.TemplateRecord{Template: domain.Template{ID: text, Text: text}, Embedding: vec}
}

func newStore(t *testing.T, dim int, records ...domain.TemplateRecord) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(context.Background(), dim))
	require.NoError(t, s.Upsert(context.Background(), records))
	return s
}

func TestSearch_OrderedAndBounded(t *testing.T) {
	s := newStore(t, 2, rec("x", 1, 0), rec("y", 0, 1), rec("xy", 1, 1), rec("-x", -1, 0))

	res, err := s.Search(context.Background(), []float64{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"x", "xy", "y"}, texts(res))
	assert.InDelta(t, 1.0, res[0].Score, 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, res[1].Score, 1e-12)
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	s := newStore(t, 2, rec("first", 0, 1), rec("second", 0, 2), rec("third", 0, 3), rec("best", 1, 0))

	res, err := s.Search(context.Background(), []float64{0, 5}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "best"}, texts(res))
}

func TestSearch_ZeroVectorsScoreZero(t *testing.T) {
	s := newStore(t, 2, rec("zero", 0, 0), rec("one", 1, 0))

	res, err := s.Search(context.Background(), []float64{0, 0}, 2)
	require.NoError(t, err)
	for _, r := range res {
		assert.Equal(t, 0.0, r.Score)
	}

	res, err = s.Search(context.Background(), []float64{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "one", res[0].Text)
	assert.Equal(t, 0.0, res[1].Score)
}

func TestSearch_EmptyAndDefaults(t *testing.T) {
	s := NewStorage()
	res, err := s.Search(context.Background(), []float64{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Empty(t, res)

	s = newStore(t, 1, rec("a", 1), rec("b", 1), rec("c", 1), rec("d", 1), rec("e", 1), rec("f", 1))
	res, err = s.Search(context.Background(), []float64{1}, 0)
	require.NoError(t, err)
	assert.Len(t, res, 5)
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(context.Background(), 2))
	assert.Error(t, s.Upsert(context.Background(), []domain.TemplateRecord{rec("bad", 1, 2, 3)}))
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Upsert(context.Background(), []domain.TemplateRecord{rec("ok", 1, 2)}))
	_, err := s.Search(context.Background(), []float64{1}, 1)
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	s := newStore(t, 1, rec("a", 1))
	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, 0, s.Len())
	assert.Error(t, s.Init(context.Background(), 0))
}

func texts(rs []domain.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Text
	}
	return out
}
