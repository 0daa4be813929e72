package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventplanner/internal/config"
	"eventplanner/internal/domain"
	"eventplanner/internal/embedcache"
	rediscache "eventplanner/internal/embedcache/redis"
	sqlitecache "eventplanner/internal/embedcache/sqlite"
	"eventplanner/internal/embedding/cached"
	embedopenai "eventplanner/internal/embedding/openai"
	"eventplanner/internal/embedding/tfidf"
	"eventplanner/internal/llm"
	"eventplanner/internal/llm/heuristic"
	llmopenai "eventplanner/internal/llm/openai"
	"eventplanner/internal/logging"
	"eventplanner/internal/planner"
	"eventplanner/internal/service"
	"eventplanner/internal/templates"
	"eventplanner/internal/vectorstore"
	"eventplanner/internal/vectorstore/memory"
	"eventplanner/internal/vectorstore/qdrant"
)

// app holds the assembled components of one invocation.
type app struct {
	planner *service.Planner
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	a := &app{}
	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	emb, err = a.wrapCache(ctx, cfg, emb)
	if err != nil {
		return nil, err
	}
	model, err := buildLLM(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	newStore, err := storeFactory(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	catalog, err := templates.Load(cfg.Templates.Path)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load templates: %w", err)
	}
	a.planner, err = service.NewPlanner(service.Options{
		LLM:      model,
		Embedder: emb,
		NewStore: newStore,
		Catalog:  catalog,
		Settings: planner.Settings{
			RetrieveTopK:      cfg.Planner.RetrieveTopK,
			DefaultGuestCount: cfg.Planner.DefaultGuestCount,
			VenueCapacity:     cfg.Planner.VenueCapacity,
		},
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		client, err := embedopenai.NewClient(embedopenai.Config{
			BaseURL:    oc.BaseURL,
			APIKeyEnv:  oc.APIKeyEnv,
			Model:      oc.Model,
			Timeout:    time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries: oc.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

// wrapCache puts the configured cache in front of emb. The TF-IDF embedder
// derives its vocabulary from the first batch it embeds, so it is never cached.
func (a *app) wrapCache(ctx context.Context, cfg *config.AppConfig, emb domain.Embedder) (domain.Embedder, error) {
	if cfg.Cache.Type == "" || cfg.Cache.Type == "none" {
		return emb, nil
	}
	if _, ok := emb.(*tfidf.Embedder); ok {
		lg := logging.New("wiring")
		lg.Info().Str("cache", cfg.Cache.Type).Msg("embedding cache ignored for the tfidf embedder")
		return emb, nil
	}
	var store embedcache.Store
	switch cfg.Cache.Type {
	case "sqlite":
		s, err := sqlitecache.Open(cfg.Cache.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		store = s
	case "redis":
		rc := cfg.Cache.Redis
		s, err := rediscache.New(ctx, rediscache.Config{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
			TTL:      time.Duration(rc.TTLSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown cache: %s", cfg.Cache.Type)
	}
	a.closers = append(a.closers, store.Close)
	return cached.New(emb, store, cfg.Cache.Type), nil
}

func buildLLM(cfg *config.AppConfig) (llm.Client, error) {
	switch cfg.LLM.Type {
	case "heuristic", "":
		return heuristic.New(), nil
	case "openai":
		oc := cfg.LLM.OpenAI
		client, err := llmopenai.NewClient(llmopenai.Config{
			BaseURL:           oc.BaseURL,
			APIKeyEnv:         oc.APIKeyEnv,
			Model:             oc.Model,
			Timeout:           time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries:        oc.MaxRetries,
			Temperature:       oc.Temperature,
			CreateTemperature: oc.CreateTemperature,
		})
		if err != nil {
			return nil, fmt.Errorf("openai llm init: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm: %s", cfg.LLM.Type)
	}
}

func storeFactory(cfg *config.AppConfig) (func() vectorstore.Storage, error) {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return func() vectorstore.Storage { return memory.NewStorage() }, nil
	case "qdrant":
		qc := qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}
		return func() vectorstore.Storage { return qdrant.NewStorage(qc) }, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
