package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
	"NewsForge/internal/ports"
)

// Orchestrator coordinates seed and sync runs per category and owns the job
// status map. The mutex in StartSeedIfEmpty makes the running-check, the
// transition, and the scheduling of the background run atomic with respect to
// concurrent callers.
type Orchestrator struct {
	extractors *extractor.Registry
	batcher    *Batcher
	repo       ports.ArticleRepository
	statuses   ports.StatusStore
	seedLimit  int
	syncLimit  int
	logger     *slog.Logger
	now        func() time.Time

	startMu sync.Mutex
}

// OrchestratorDeps wires the orchestration dependencies.
type OrchestratorDeps struct {
	Extractors *extractor.Registry
	Batcher    *Batcher
	Repository ports.ArticleRepository
	Statuses   ports.StatusStore
	SeedLimit  int
	SyncLimit  int
	Logger     *slog.Logger
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seedLimit := deps.SeedLimit
	if seedLimit <= 0 {
		seedLimit = 30
	}
	syncLimit := deps.SyncLimit
	if syncLimit <= 0 {
		syncLimit = 8
	}
	return &Orchestrator{
		extractors: deps.Extractors,
		batcher:    deps.Batcher,
		repo:       deps.Repository,
		statuses:   deps.Statuses,
		seedLimit:  seedLimit,
		syncLimit:  syncLimit,
		logger:     logger,
		now:        time.Now,
	}
}

// StartSeedIfEmpty triggers the one-time bootstrap for a category. If a seed
// is already running it returns the current status unchanged. If the store
// already holds articles for the category it completes immediately with zero
// inserted. Otherwise it transitions to running and schedules the seed run in
// the background; the returned status never waits for that run.
func (o *Orchestrator) StartSeedIfEmpty(ctx context.Context, category domain.Category) domain.JobStatus {
	o.startMu.Lock()
	defer o.startMu.Unlock()

	current := o.statuses.Get(category)
	if current.State == domain.JobRunning {
		return current
	}

	now := o.now().UTC()

	count, err := o.repo.Count(ctx, category)
	if err != nil {
		status := domain.JobStatus{State: domain.JobError, StartedAt: now, Message: err.Error()}
		o.statuses.Set(category, status)
		return status
	}
	if count > 0 {
		status := domain.JobStatus{State: domain.JobDone, StartedAt: now, FinishedAt: now, Inserted: 0}
		o.statuses.Set(category, status)
		return status
	}

	status := domain.JobStatus{State: domain.JobRunning, StartedAt: now}
	o.statuses.Set(category, status)
	go o.runSeed(category, now)
	return status
}

// SeedStatus is a pure read of the current job status.
func (o *Orchestrator) SeedStatus(category domain.Category) domain.JobStatus {
	return o.statuses.Get(category)
}

// runSeed executes the full seed flow detached from the triggering request.
func (o *Orchestrator) runSeed(category domain.Category, startedAt time.Time) {
	ctx := context.Background()

	inserted, err := o.run(ctx, category, o.seedLimit)
	finished := o.now().UTC()
	if err != nil {
		o.statuses.Set(category, domain.JobStatus{
			State:     domain.JobError,
			StartedAt: startedAt,
			Message:   err.Error(),
		})
		return
	}
	o.statuses.Set(category, domain.JobStatus{
		State:      domain.JobDone,
		StartedAt:  startedAt,
		FinishedAt: finished,
		Inserted:   inserted,
	})
}

// SyncLatest runs one incremental update for a category and returns the
// inserted count. It has no idempotency gate; the deduplication against the
// stored reference URL set makes repeated and concurrent runs safe.
func (o *Orchestrator) SyncLatest(ctx context.Context, category domain.Category) (int, error) {
	return o.run(ctx, category, o.syncLimit)
}

func (o *Orchestrator) run(ctx context.Context, category domain.Category, limit int) (int, error) {
	logger := o.logger.With("run_id", uuid.NewString(), "category", category)

	ex, err := o.extractors.Resolve(category)
	if err != nil {
		return 0, err
	}

	urls, err := ex.Extract(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("discover %s: %w", category, err)
	}
	logger.Info("discovery finished", "urls", len(urls))
	if len(urls) == 0 {
		return 0, nil
	}

	items, err := o.batcher.Generate(ctx, urls, category, ex.SourceName())
	if err != nil {
		return 0, fmt.Errorf("generate %s: %w", category, err)
	}
	logger.Info("generation finished", "items", len(items))
	if len(items) == 0 {
		return 0, nil
	}

	known, err := o.repo.ExistingReferenceURLs(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("load known urls %s: %w", category, err)
	}

	fresh := Dedupe(items, known)
	if len(fresh) == 0 {
		logger.Info("nothing new after dedup")
		return 0, nil
	}

	inserted, err := o.repo.Save(ctx, fresh)
	if err != nil {
		return inserted, fmt.Errorf("save %s: %w", category, err)
	}
	logger.Info("run finished", "inserted", inserted)
	return inserted, nil
}
