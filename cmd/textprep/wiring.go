package main

import (
	"context"
	"log/slog"

	"github.com/ruhan-islam/text-summarizer/internal/core/services/cleaning"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/dataset"
	"github.com/ruhan-islam/text-summarizer/internal/core/services/refinery"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/cache"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/database"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/database/repositories"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/storage"
	"github.com/ruhan-islam/text-summarizer/internal/infrastructure/tabular"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/stopwords"
)

func (a *app) newPipeline(refineryID string) (*refinery.Pipeline, error) {
	if refineryID == "" {
		refineryID = a.cfg.Refinery.Version
	}

	custom := map[string]interface{}{
		"language": a.cfg.Refinery.StopwordsLanguage,
	}
	if a.cfg.Refinery.StopwordsDir != "" {
		custom["corpus"] = stopwords.NewFileCorpus(a.cfg.Refinery.StopwordsDir)
	}

	return refinery.NewPipeline(refineryID, custom, refinery.WithWorkers(a.cfg.Refinery.Workers))
}

// newCleaner wires the clean cache when enabled. An unreachable Redis only costs speed.
func (a *app) newCleaner(refineryID string) (*cleaning.Service, func(), error) {
	pipeline, err := a.newPipeline(refineryID)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var c cleaning.Cache
	if a.cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(&a.cfg.Cache, a.logger)
		if err != nil {
			a.logger.Warn("clean cache unavailable, cleaning without it", slog.Any("error", err))
		} else {
			c = redisCache
			cleanup = func() { _ = redisCache.Close() }
		}
	}

	return cleaning.NewService(pipeline, c, a.logger), cleanup, nil
}

func (a *app) openDatabase() (*database.PostgresDB, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	db, err := database.NewPostgresDB(&a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *app) newStorage() (*storage.LocalStorage, error) {
	return storage.NewLocalStorage(&storage.LocalStorageConfig{BasePath: a.cfg.Storage.BasePath}, a.logger)
}

func (a *app) newParsers() *tabular.ParserFactory {
	pc := tabular.DefaultParserConfig()
	pc.MaxFileSize = a.cfg.MaxFileSizeBytes()
	return tabular.NewParserFactory(pc)
}

// newPreparer wires run tracking and dedup hash storage when db is not nil
func (a *app) newPreparer(store *storage.LocalStorage, cleaner *cleaning.Service, db *database.PostgresDB) (*dataset.Preparer, error) {
	deps := dataset.Dependencies{
		Cleaner: cleaner,
		Store:   store,
		Parsers: a.newParsers(),
		Logger:  a.logger,
	}
	if db != nil {
		deps.Runs = repositories.NewRunRepository(db.DB, a.logger)
		deps.Hashes = repositories.NewDedupHashRepository(db.DB, a.logger)
	}
	return dataset.NewPreparer(deps)
}

func withDatabase(ctx context.Context, a *app, persist bool) (*database.PostgresDB, error) {
	if !persist {
		return nil, nil
	}
	db, err := a.openDatabase()
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
