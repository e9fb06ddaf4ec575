package usecase

import (
	"sync"

	"NewsForge/internal/domain"
	"NewsForge/internal/ports"
)

// MemoryStatusStore keeps the per-category job status in process memory.
// Enough for a single instance; status is lost on restart.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[domain.Category]domain.JobStatus
}

var _ ports.StatusStore = (*MemoryStatusStore)(nil)

// NewMemoryStatusStore builds an empty store; unknown categories read as idle.
func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: map[domain.Category]domain.JobStatus{}}
}

// Get returns the current status, defaulting to idle.
func (s *MemoryStatusStore) Get(category domain.Category) domain.JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.statuses[category]; ok {
		return status
	}
	return domain.JobStatus{State: domain.JobIdle}
}

// Set overwrites the status for a category.
func (s *MemoryStatusStore) Set(category domain.Category, status domain.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[category] = status
}
