// Package app builds the long-lived handles (database, semantic index, model
// clients, cache) once per process and hands them to the HTTP and MCP shells.
package app

import (
	"context"
	"fmt"

	"slotbook/cmd/internal/config"
	"slotbook/cmd/internal/domain/database"
	"slotbook/cmd/internal/domain/database/repository"
	"slotbook/cmd/internal/integration/cache"
	"slotbook/cmd/internal/integration/llm"
	"slotbook/cmd/internal/integration/vectorstore"
	"slotbook/cmd/internal/service"
	"slotbook/cmd/internal/utils/validators"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type closableIndex interface {
	service.AppointmentIndex
	Close() error
}

type App struct {
	DB           *gorm.DB
	Appointments *service.DefaultAppointmentService
	Suggestions  *service.DefaultSuggestionService

	index  closableIndex
	cache  *cache.RedisSuggestionCache
	logger *zap.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Init(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	a := &App{DB: db, logger: logger}

	embedder, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.Embedding.APIKey,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialize embedding client: %w", err)
	}

	index, err := newIndex(ctx, &cfg.Index, embedder, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialize semantic index: %w", err)
	}
	a.index = index

	completer, err := llm.NewClient(&llm.Config{
		Endpoint:  cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialize llm client: %w", err)
	}

	// Left as a nil interface when redis is not configured.
	var suggestionCache service.SuggestionCache
	if cfg.Redis.CacheEnabled() {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.cache, err = cache.NewRedisSuggestionCache(ctx, client, cfg.Suggestion.CacheTTL)
		if err != nil {
			_ = client.Close()
			a.Close()
			return nil, fmt.Errorf("initialize suggestion cache: %w", err)
		}
		suggestionCache = a.cache
	}

	validate := validators.New()
	a.Appointments = service.NewAppointmentService(repository.NewAppointmentRepository(db), a.index, validate, logger)
	a.Suggestions = service.NewSuggestionService(completer, suggestionCache, validate, logger)

	logger.Info("Application initialized",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("llm_model", completer.Model()),
		zap.Bool("suggestion_cache", a.cache != nil))
	return a, nil
}

func newIndex(ctx context.Context, cfg *config.IndexConfig, embedder vectorstore.Embedder, logger *zap.Logger) (closableIndex, error) {
	switch cfg.Backend {
	case config.IndexChromem:
		store, err := vectorstore.NewChromemStore(cfg.Path, cfg.Compress, embedder, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.IndexQdrant:
		store, err := vectorstore.NewQdrantStore(ctx, &vectorstore.QdrantConfig{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			UseTLS:     cfg.QdrantTLS,
			Dimensions: cfg.Dimensions,
		}, embedder, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported index backend %q", cfg.Backend)
	}
}

// Close releases handles in reverse order of creation.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("Failed to close suggestion cache", zap.Error(err))
		}
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.logger.Warn("Failed to close semantic index", zap.Error(err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.logger.Warn("Failed to close database", zap.Error(err))
	}
}
