package repositories

import (
	"sync"

	"markethub/internal/models"

	"github.com/google/uuid"
)

// MockActivityRepository is an in-memory implementation of ActivityRepository.
type MockActivityRepository struct {
	entries []models.ActivityLog
	mu      sync.RWMutex
}

// NewMockActivityRepository creates a new instance of MockActivityRepository.
func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

// Create appends an audit entry.
func (r *MockActivityRepository) Create(entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// ListForUser returns the most recent audit entries for a user.
func (r *MockActivityRepository) ListForUser(userID string, limit int) ([]models.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.ActivityLog
	for i := len(r.entries) - 1; i >= 0 && len(result) < limit; i-- {
		entry := r.entries[i]
		if entry.UserID != nil && *entry.UserID == userID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// All returns every recorded entry, oldest first. Used by tests.
func (r *MockActivityRepository) All() []models.ActivityLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.ActivityLog, len(r.entries))
	copy(entries, r.entries)
	return entries
}
