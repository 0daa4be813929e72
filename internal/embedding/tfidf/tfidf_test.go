package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Birthday party for 30 people with cake and balloons.",
	"Corporate dinner for 50 people with speeches and networking.",
	"Wedding reception for 100 people with dance and catering.",
}

func TestEmbedDocuments_PreparesOnFirstBatch(t *testing.T) {
	e := NewEmbedder()
	vecs, err := e.EmbedDocuments(context.Background(), corpus)
	require.NoError(t, err)
	require.Len(t, vecs, len(corpus))

	dim := e.Dimension()
	require.Greater(t, dim, 0)
	for _, v := range vecs {
		assert.Len(t, v, dim)
		assert.InDelta(t, 1.0, l2(v), 1e-9)
	}

	// A second batch reuses the vocabulary.
	more, err := e.EmbedDocuments(context.Background(), []string{"Farewell party with snacks."})
	require.NoError(t, err)
	assert.Len(t, more[0], dim)
	assert.Equal(t, dim, e.Dimension())
}

func TestEmbedQuery_Unprepared(t *testing.T) {
	_, err := NewEmbedder().EmbedQuery(context.Background(), "cake")
	assert.Error(t, err)
}

func TestEmbedQuery_UnknownTokensGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	vec, err := e.EmbedQuery(context.Background(), "zzzz qqqq")
	require.NoError(t, err)
	assert.Equal(t, 0.0, l2(vec))
}

func TestEmbedQuery_SameTextSameVector(t *testing.T) {
	e := NewEmbedder()
	docs, err := e.EmbedDocuments(context.Background(), corpus)
	require.NoError(t, err)

	q, err := e.EmbedQuery(context.Background(), corpus[1])
	require.NoError(t, err)
	assert.Equal(t, docs[1], q)
}

func TestTokenize_SplitsUnderscoresAndDropsStopwords(t *testing.T) {
	e := NewEmbedder()
	assert.Equal(t, []string{"birthday", "party", "30", "people"}, e.tokenize("Plan a birthday_party for 30 people"))
}

func TestPrepare_Empty(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
	assert.Error(t, NewEmbedder().Prepare([]string{"the and of"}))
}

func l2(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
