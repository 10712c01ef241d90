package app

import (
	"context"
	"fmt"
	"log/slog"

	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/history"
	"AutoPoster/internal/infrastructure/credentials"
	"AutoPoster/internal/infrastructure/linkedin"
	"AutoPoster/internal/infrastructure/llm"
	searchinfra "AutoPoster/internal/infrastructure/search"
	"AutoPoster/internal/infrastructure/storage"
	"AutoPoster/internal/logging"
	"AutoPoster/internal/persona"
	"AutoPoster/internal/ports"
	"AutoPoster/internal/search"
	"AutoPoster/internal/usecase"
)

// Application wires configuration to the posting pipeline.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	closer   func() error
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := search.NewRegistry()
	registry.Register(searchinfra.NewGoogleNewsStrategy(nil, ""))
	registry.Register(searchinfra.NewDuckDuckGoStrategy(nil, ""))

	source := searchinfra.NewMultiSource(registry, cfg.Search, baseLogger.With("component", "source"))

	store, closer, err := buildHistoryStore(ctx, cfg.History)
	if err != nil {
		return nil, err
	}

	creds := credentials.NewChain(
		credentials.NewStaticProvider(cfg.LinkedIn.AccessToken, cfg.LinkedIn.AuthorURN),
		credentials.NewFileProvider(cfg.LinkedIn.TokenFile),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		History:   store,
		Generator: llm.NewGroqGenerator(cfg.Groq, baseLogger.With("component", "generator")),
		Publisher: linkedin.NewPublisher(cfg.LinkedIn, creds),
		Persona:   buildPersona(cfg.Persona),
		Window: history.WindowPolicy{
			MaxEntries: cfg.History.WindowEntries,
			MaxAge:     cfg.History.WindowAge(),
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, closer: closer}, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, dryRun bool) (domain.RunResult, error) {
	return a.pipeline.Run(ctx, dryRun)
}

// Close releases backend resources.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

func buildHistoryStore(ctx context.Context, cfg config.HistoryConfig) (ports.HistoryStore, func() error, error) {
	switch cfg.Backend {
	case "", "file":
		return storage.NewFileHistory(cfg.FilePath, cfg.KeepEntries), nil, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("history backend postgres requires a DSN")
		}
		store, err := storage.OpenPostgresHistory(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

func buildPersona(cfg config.PersonaConfig) persona.Persona {
	p := persona.Default()
	if cfg.Name != "" {
		p.Name = cfg.Name
	}
	if cfg.SystemPrompt != "" {
		p.SystemPrompt = cfg.SystemPrompt
	}
	if cfg.Tone != "" {
		p.Tone = cfg.Tone
	}
	if len(cfg.Expertise) > 0 {
		p.ExpertiseAreas = cfg.Expertise
	}
	if len(cfg.Hashtags) > 0 {
		p.Hashtags = cfg.Hashtags
	}
	if cfg.MaxPostChars > 0 {
		p.MaxPostChars = cfg.MaxPostChars
	}
	return p
}
