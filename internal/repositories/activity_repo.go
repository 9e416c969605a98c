package repositories

import "markethub/internal/models"

// ActivityRepository defines the interface for the append-only audit log.
type ActivityRepository interface {
	Create(entry *models.ActivityLog) error
	ListForUser(userID string, limit int) ([]models.ActivityLog, error)
}
