package ports

import (
	"context"
	"errors"

	"NewsForge/internal/domain"
)

// ErrNotFound is returned by repository lookups that match nothing.
var ErrNotFound = errors.New("article not found")

// ErrTransient marks backend failures that are worth retrying (rate limits,
// overloaded upstreams). Checked with errors.Is.
var ErrTransient = errors.New("transient backend failure")

// ArticleRepository persists generated articles. Save must tolerate a
// reference_url conflict on one row without losing its siblings.
type ArticleRepository interface {
	Count(ctx context.Context, category domain.Category) (int, error)
	ExistingReferenceURLs(ctx context.Context, category domain.Category) (map[string]struct{}, error)
	Save(ctx context.Context, articles []domain.Article) (int, error)
	RecentByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error)
	ByReferenceURL(ctx context.Context, referenceURL string) (domain.Article, error)
}

// Completer sends one prompt to the generation backend and returns its raw,
// possibly noisy, text response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StatusStore holds the per-category seed job status. The in-memory
// implementation is enough for a single instance; a multi-instance deployment
// swaps in a store with external coordination.
type StatusStore interface {
	Get(category domain.Category) domain.JobStatus
	Set(category domain.Category, status domain.JobStatus)
}

// Scheduler drives the periodic per-category sync trigger.
type Scheduler interface {
	Start(ctx context.Context, job func(domain.Category)) error
	Stop(ctx context.Context) error
}
