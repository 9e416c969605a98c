package repositories

import (
	"errors"
	"fmt"
	"time"

	"markethub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{
		db: db,
	}
}

// Create persists a new token.
func (r *GORMTokenRepository) Create(token *models.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create %s token: %w", token.Kind, err)
	}
	return nil
}

// GetValid retrieves an unexpired token by value and kind.
func (r *GORMTokenRepository) GetValid(value, kind string, now time.Time) (*models.Token, error) {
	var token models.Token
	err := r.db.First(&token, "value = ? AND kind = ? AND expires_at > ?", value, kind, now).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s token: %w", kind, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s token: %w", kind, err)
	}
	return &token, nil
}

// Delete removes the token with the given value. Deleting a token that no
// longer exists is not an error.
func (r *GORMTokenRepository) Delete(value string) error {
	if err := r.db.Delete(&models.Token{}, "value = ?", value).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteForUser removes all tokens of one kind belonging to a user.
func (r *GORMTokenRepository) DeleteForUser(userID, kind string) error {
	if err := r.db.Delete(&models.Token{}, "user_id = ? AND kind = ?", userID, kind).Error; err != nil {
		return fmt.Errorf("failed to delete %s tokens for user %s: %w", kind, userID, err)
	}
	return nil
}

// DeleteExpired removes all tokens past their expiry and reports how many
// rows were purged.
func (r *GORMTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Delete(&models.Token{}, "expires_at <= ?", now)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
