package repositories

import (
	"fmt"

	"markethub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMActivityRepository is a GORM implementation of ActivityRepository.
type GORMActivityRepository struct {
	db *gorm.DB
}

// NewGORMActivityRepository creates a new instance of GORMActivityRepository.
func NewGORMActivityRepository(db *gorm.DB) *GORMActivityRepository {
	return &GORMActivityRepository{
		db: db,
	}
}

// Create appends an audit entry.
func (r *GORMActivityRepository) Create(entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create activity log entry: %w", err)
	}
	return nil
}

// ListForUser returns the most recent audit entries for a user.
func (r *GORMActivityRepository) ListForUser(userID string, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity for user %s: %w", userID, err)
	}
	return entries, nil
}
