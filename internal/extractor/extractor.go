package extractor

import (
	"context"
	"fmt"

	"NewsForge/internal/domain"
)

// Extractor captures a single source's discovery strategy. Each call
// re-fetches the listing; results are normalized absolute URLs, in page
// order, deduplicated, at most limit long.
type Extractor interface {
	Category() domain.Category
	SourceName() string
	Extract(ctx context.Context, limit int) ([]string, error)
}

// Registry keeps a mapping from categories to their extractors.
type Registry struct {
	extractors map[domain.Category]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[domain.Category]Extractor{}}
}

// Register adds or replaces the extractor for its category.
func (r *Registry) Register(ex Extractor) {
	if r.extractors == nil {
		r.extractors = map[domain.Category]Extractor{}
	}
	r.extractors[ex.Category()] = ex
}

// Resolve returns the extractor for a category or an error if it is absent.
func (r *Registry) Resolve(category domain.Category) (Extractor, error) {
	if ex, ok := r.extractors[category]; ok {
		return ex, nil
	}
	return nil, fmt.Errorf("no extractor registered for category %s", category)
}
