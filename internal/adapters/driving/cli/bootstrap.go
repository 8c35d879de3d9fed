package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/pagegen/internal/adapters/driven/ai"
	"github.com/custodia-labs/pagegen/internal/adapters/driven/config/env"
	"github.com/custodia-labs/pagegen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagegen/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/pagegen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagegen/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
	"github.com/custodia-labs/pagegen/internal/core/services"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// bootstrapServices reads the settings once and wires every service.
// Failures in optional parts (config file, history, template overrides) are
// logged and replaced with in-memory fallbacks so the pipeline still runs.
func bootstrapServices(_ context.Context) error {
	store, err := openConfigStore()
	if err != nil {
		return err
	}

	settingsSvc := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}
	settingsService = settingsSvc
	configFile = store.Path()
	logger.Debug("Using config %s", configFile)

	source := file.NewTemplateSource(settings.Pipeline.TemplatesDir)
	if engine, err := loadTemplateEngine(source); err != nil {
		logger.Warn("Templates unavailable: %v", err)
		templateService = nil
	} else {
		templateService = engine
	}

	runs := openRunStore(settings.History)
	historyService = services.NewHistoryService(runs)
	newPipeline = pipelineFactory(source, runs)

	return nil
}

// openConfigStore layers .env and environment variables over the config file.
// An unreadable config file falls back to defaults held in memory.
func openConfigStore() (*env.ConfigStore, error) {
	path := configPath
	if path == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config directory: %w", err)
		}
		path = filepath.Join(dir, file.ConfigFileName)
	}

	var base driven.ConfigStore
	fileStore, err := file.OpenConfigFile(path)
	if err != nil {
		logger.Warn("Config file unavailable, using defaults: %v", err)
		base = memory.NewConfigStore(nil)
	} else {
		base = fileStore
	}

	store, err := env.NewConfigStore(base, envFilePath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", envFilePath, err)
	}
	return store, nil
}

// openRunStore returns the SQLite history when enabled and available.
// Runs are otherwise kept in memory for the lifetime of the process.
func openRunStore(cfg domain.HistorySettings) driven.RunStore {
	if !cfg.Enabled {
		return memory.NewRunStore()
	}
	db, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		logger.Warn("Run history unavailable, keeping runs in memory: %v", err)
		return memory.NewRunStore()
	}
	logger.Debug("Run history at %s", db.Path())
	closers = append(closers, func() {
		if err := db.Close(); err != nil {
			logger.Warn("Closing history database: %v", err)
		}
	})
	return db.RunStore()
}

func loadTemplateEngine(source driven.TemplateSource) (*services.TemplateEngine, error) {
	defs, err := source.Load()
	if err != nil {
		return nil, err
	}
	return services.NewTemplateEngine(defs)
}

// pipelineFactory builds pipelines sharing the template source and history.
// The LLM connection is created per pipeline because flags may change the
// provider settings.
func pipelineFactory(templates driven.TemplateSource, runs driven.RunStore) PipelineFactory {
	return func(ctx context.Context, settings domain.Settings) (driving.PipelineService, func(), error) {
		if err := settings.Validate(); err != nil {
			return nil, nil, err
		}

		llm, err := ai.CreateConfiguredLLMService(ctx, &settings.LLM)
		if err != nil {
			// Generation stages report the failure with a hint.
			logger.Warn("%v", err)
		}
		if llm == nil {
			logger.Debug("No LLM configured; stages that need one will fail")
		}

		prompts, err := file.NewPromptStore(settings.Pipeline.PromptsDir)
		if err != nil {
			if llm != nil {
				llm.Close() //nolint:errcheck // already failing
			}
			return nil, nil, fmt.Errorf("opening prompt store: %w", err)
		}

		pipeline := services.NewPipelineService(
			settings,
			"pagegen/"+version,
			llm,
			prompts,
			templates,
			filesystem.NewDocumentWriter(),
			runs,
		)
		release := func() {
			if llm != nil {
				if err := llm.Close(); err != nil {
					logger.Debug("Closing LLM service: %v", err)
				}
			}
		}
		return pipeline, release, nil
	}
}
