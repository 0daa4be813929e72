// Package service wires the similarity index, the model client and the
// template catalog into planning runs.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"eventplanner/internal/domain"
	"eventplanner/internal/llm"
	"eventplanner/internal/logging"
	"eventplanner/internal/planner"
	"eventplanner/internal/templates"
	"eventplanner/internal/vectorstore"
	"eventplanner/internal/vectorstore/memory"
)

// Options configures a Planner. Catalog and NewStore default to the built-in
// templates and in-memory storage.
type Options struct {
	LLM      llm.Client
	Embedder domain.Embedder
	NewStore func() vectorstore.Storage
	Catalog  *templates.Catalog
	Settings planner.Settings
}

// Planner runs planning requests. Each run gets its own index.
type Planner struct {
	llm      llm.Client
	embedder domain.Embedder
	newStore func() vectorstore.Storage
	catalog  *templates.Catalog
	settings planner.Settings
	log      zerolog.Logger
}

func NewPlanner(opts Options) (*Planner, error) {
	if opts.LLM == nil {
		return nil, errors.New("service: llm client is required")
	}
	if opts.Embedder == nil {
		return nil, errors.New("service: embedder is required")
	}
	if opts.NewStore == nil {
		opts.NewStore = func() vectorstore.Storage { return memory.NewStorage() }
	}
	if opts.Catalog == nil {
		cat, err := templates.Default()
		if err != nil {
			return nil, fmt.Errorf("load default templates: %w", err)
		}
		opts.Catalog = cat
	}
	return &Planner{
		llm:      opts.LLM,
		embedder: opts.Embedder,
		newStore: opts.NewStore,
		catalog:  opts.Catalog,
		settings: opts.Settings,
		log:      logging.New("service"),
	}, nil
}

// Templates returns the catalog templates in seed order.
func (s *Planner) Templates() []domain.Template {
	return append([]domain.Template(nil), s.catalog.Templates...)
}

// Catalog returns the template catalog backing the planner.
func (s *Planner) Catalog() *templates.Catalog { return s.catalog }

// Index builds a fresh index seeded with the catalog templates. Seeding
// failures are logged and leave the index empty; planning still proceeds.
func (s *Planner) Index(ctx context.Context) *vectorstore.Index {
	store := s.newStore()
	if err := store.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("clearing template storage failed")
	}
	idx := vectorstore.NewIndex(s.embedder, store)
	if err := idx.Add(ctx, s.catalog.Templates); err != nil {
		s.log.Warn().Err(err).Int("templates", len(s.catalog.Templates)).Msg("seeding templates failed; continuing without retrieval context")
		return idx
	}
	s.log.Debug().Int("templates", idx.Len()).Str("embedder", s.embedder.Name()).Msg("template index ready")
	return idx
}

// Plan runs the full planning pipeline for one request.
func (s *Planner) Plan(ctx context.Context, input string) (*planner.Record, error) {
	idx := s.Index(ctx)
	p, err := planner.NewDefault(planner.Deps{
		LLM:        s.llm,
		Retriever:  idx,
		Relevant:   idx,
		Guidelines: s.catalog,
		Settings:   s.settings,
	})
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, input)
}

// Search ranks the catalog against query. When every cosine score is zero,
// typically because the query shares no vocabulary with the embedder, the
// ranking falls back to token overlap.
func (s *Planner) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	res, err := s.Index(ctx).Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	for _, r := range res {
		if r.Score > 1e-9 {
			return res, nil
		}
	}
	return lexicalSearch(s.catalog.Templates, query, k), nil
}

// Relevant returns templates for a category hint, as GetRelevant does.
func (s *Planner) Relevant(ctx context.Context, categoryHint, extra string) ([]domain.SearchResult, error) {
	return s.Index(ctx).GetRelevant(ctx, categoryHint, extra)
}
