package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"NewsForge/internal/config"
	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
	"NewsForge/internal/infrastructure/httpapi"
	"NewsForge/internal/infrastructure/llm"
	"NewsForge/internal/infrastructure/scheduler"
	"NewsForge/internal/infrastructure/sources"
	"NewsForge/internal/infrastructure/storage"
	"NewsForge/internal/logging"
	"NewsForge/internal/usecase"
)

// Application wires configuration to the pipeline and drives its lifecycle.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	db           *sql.DB
	repo         *storage.PostgresRepository
	orchestrator *usecase.Orchestrator
	scheduler    *scheduler.SyncScheduler
	server       *httpapi.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := storage.NewPostgresRepository(db)

	registry := extractor.NewRegistry()
	for _, src := range cfg.Sources {
		ex, err := buildExtractor(src)
		if err != nil {
			return nil, err
		}
		registry.Register(ex)
	}

	completer := llm.NewClient(cfg.LLM)
	batcher := usecase.NewBatcher(completer, cfg.Pipeline, baseLogger.With("component", "batcher"))

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Extractors: registry,
		Batcher:    batcher,
		Repository: repo,
		Statuses:   usecase.NewMemoryStatusStore(),
		SeedLimit:  cfg.Pipeline.SeedLimit,
		SyncLimit:  cfg.Pipeline.SyncLimit,
		Logger:     baseLogger.With("component", "orchestrator"),
	})

	categories := make([]domain.Category, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		categories = append(categories, src.Category)
	}

	return &Application{
		cfg:          cfg,
		logger:       baseLogger,
		db:           db,
		repo:         repo,
		orchestrator: orchestrator,
		scheduler:    scheduler.NewSyncScheduler(cfg.Scheduler.SyncEvery.Std(), cfg.Scheduler.Offset.Std(), categories),
		server:       httpapi.NewServer(orchestrator, repo, baseLogger.With("component", "http")),
	}, nil
}

func buildExtractor(src config.SourceConfig) (extractor.Extractor, error) {
	switch src.Category {
	case domain.CategoryTech:
		return sources.NewTechExtractor(src.Name, src.ListingURL, nil), nil
	case domain.CategoryScience:
		return sources.NewScienceExtractor(src.Name, src.ListingURL, nil), nil
	case domain.CategoryBusiness:
		return sources.NewBusinessExtractor(src.Name, src.ListingURL, nil), nil
	case domain.CategoryWorld:
		return sources.NewWorldExtractor(src.Name, src.ListingURL, nil), nil
	default:
		return nil, fmt.Errorf("no extractor for category %q", src.Category)
	}
}

// Run prepares storage, starts the sync scheduler, and serves HTTP until ctx
// is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	syncJob := func(category domain.Category) {
		inserted, err := a.orchestrator.SyncLatest(ctx, category)
		if err != nil {
			a.logger.Error("sync failed", "category", category, "error", err)
			return
		}
		a.logger.Info("sync finished", "category", category, "inserted", inserted)
	}
	if err := a.scheduler.Start(ctx, syncJob); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer a.scheduler.Stop(context.Background())

	httpServer := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	a.logger.Info("listening", "addr", a.cfg.HTTP.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.db.Close()
}
