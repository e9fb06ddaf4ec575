package scheduler

import (
	"context"
	"time"

	"NewsForge/internal/domain"
	"NewsForge/internal/ports"
)

// SyncScheduler fires the sync job per category on a fixed cadence, with the
// category start times staggered by offset to spread backend load.
type SyncScheduler struct {
	every      time.Duration
	offset     time.Duration
	categories []domain.Category
	stop       chan struct{}
}

var _ ports.Scheduler = (*SyncScheduler)(nil)

// NewSyncScheduler builds a scheduler over the given categories.
func NewSyncScheduler(every, offset time.Duration, categories []domain.Category) *SyncScheduler {
	if every <= 0 {
		every = 4 * time.Hour
	}
	return &SyncScheduler{every: every, offset: offset, categories: categories}
}

// Start launches one ticking goroutine per category. Calling Start twice is a no-op.
func (s *SyncScheduler) Start(ctx context.Context, job func(domain.Category)) error {
	if job == nil {
		return nil
	}
	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	for i, category := range s.categories {
		go s.runCategory(ctx, category, time.Duration(i)*s.offset, job)
	}
	return nil
}

func (s *SyncScheduler) runCategory(ctx context.Context, category domain.Category, delay time.Duration, job func(domain.Category)) {
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	job(category)
	for {
		select {
		case <-ticker.C:
			job(category)
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}
}

// Stop halts the ticker goroutines.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
