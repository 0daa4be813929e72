// Package cached wraps an embedder with a persistent vector cache.
package cached

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"eventplanner/internal/domain"
	"eventplanner/internal/embedcache"
	"eventplanner/internal/logging"
	"eventplanner/internal/observability"
)

// Embedder serves vectors from the cache and embeds only the misses.
// Cache failures are logged and treated as misses; they never fail an embedding call.
type Embedder struct {
	inner   domain.Embedder
	store   embedcache.Store
	metrics *observability.CacheMetrics
	log     zerolog.Logger
}

// New wraps inner with store. backend labels the cache metrics.
func New(inner domain.Embedder, store embedcache.Store, backend string) *Embedder {
	return &Embedder{
		inner:   inner,
		store:   store,
		metrics: observability.NewCacheMetrics(backend),
		log:     logging.New("embedcache").With().Str("backend", backend).Logger(),
	}
}

func (e *Embedder) Name() string { return e.inner.Name() }

// EmbedDocuments looks up every text and batch-embeds the misses in one inner call.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float64, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = embedcache.Key(e.inner.Name(), text)
		if vec, ok := e.lookup(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	e.metrics.Hit(ctx, len(texts)-len(missIdx))
	e.metrics.Miss(ctx, len(missIdx))
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := e.inner.EmbedDocuments(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", e.inner.Name(), len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		e.save(ctx, keys[i], vecs[j])
	}
	return out, nil
}

// EmbedQuery returns the cached query vector or embeds and stores it.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	key := embedcache.Key(e.inner.Name(), text)
	if vec, ok := e.lookup(ctx, key); ok {
		e.metrics.Hit(ctx, 1)
		return vec, nil
	}
	e.metrics.Miss(ctx, 1)
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.save(ctx, key, vec)
	return vec, nil
}

func (e *Embedder) lookup(ctx context.Context, key string) ([]float64, bool) {
	vec, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	return vec, ok && len(vec) > 0
}

func (e *Embedder) save(ctx context.Context, key string, vec []float64) {
	// lookup treats empty vectors as misses.
	if len(vec) == 0 {
		return
	}
	if err := e.store.Put(ctx, key, vec); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
