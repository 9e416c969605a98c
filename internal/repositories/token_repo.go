package repositories

import (
	"time"

	"markethub/internal/models"
)

// TokenRepository defines the interface for remember-me and password-reset
// token persistence.
type TokenRepository interface {
	Create(token *models.Token) error
	// GetValid returns the token with the given value and kind whose expiry
	// is strictly after now. Expired or unknown tokens yield ErrNotFound.
	GetValid(value, kind string, now time.Time) (*models.Token, error)
	Delete(value string) error
	DeleteForUser(userID, kind string) error
	DeleteExpired(now time.Time) (int64, error)
}
