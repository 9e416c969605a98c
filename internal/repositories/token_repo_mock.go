package repositories

import (
	"fmt"
	"sync"
	"time"

	"markethub/internal/models"

	"github.com/google/uuid"
)

// MockTokenRepository is an in-memory implementation of TokenRepository.
type MockTokenRepository struct {
	tokens map[string]models.Token // keyed by token value
	mu     sync.RWMutex
}

// NewMockTokenRepository creates a new instance of MockTokenRepository.
func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]models.Token),
	}
}

// Create adds a new token.
func (r *MockTokenRepository) Create(token *models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if _, ok := r.tokens[token.Value]; ok {
		return fmt.Errorf("token value already exists")
	}
	r.tokens[token.Value] = *token
	return nil
}

// GetValid returns an unexpired token by value and kind.
func (r *MockTokenRepository) GetValid(value, kind string, now time.Time) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[value]
	if !ok || token.Kind != kind || token.Expired(now) {
		return nil, fmt.Errorf("%s token: %w", kind, ErrNotFound)
	}
	return &token, nil
}

// Delete removes a token by value.
func (r *MockTokenRepository) Delete(value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, value)
	return nil
}

// DeleteForUser removes all tokens of one kind belonging to a user.
func (r *MockTokenRepository) DeleteForUser(userID, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for value, token := range r.tokens {
		if token.UserID == userID && token.Kind == kind {
			delete(r.tokens, value)
		}
	}
	return nil
}

// DeleteExpired removes all expired tokens.
func (r *MockTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for value, token := range r.tokens {
		if token.Expired(now) {
			delete(r.tokens, value)
			purged++
		}
	}
	return purged, nil
}
