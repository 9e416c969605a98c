package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"markethub/internal/models"
	"markethub/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	rememberTokenTTL = 30 * 24 * time.Hour
	tokenBytes       = 32
)

// AuthService handles login, logout and remember-me session resumption.
type AuthService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	activity  *ActivityLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, activity *ActivityLogger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		activity:  activity,
	}
}

// Login authenticates a user by username or email. The credential check runs
// before the status gate, so a wrong password always yields
// ErrInvalidCredentials even for pending or rejected accounts. On success the
// full user record is returned together with a remember-me token value when
// rememberMe is set; the caller stores the token in an HTTP-only cookie.
func (s *AuthService) Login(identifier, password string, rememberMe bool, meta RequestMeta) (*models.User, string, error) {
	user, err := s.userRepo.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Same error as a password mismatch, so the response does not
			// reveal whether the account exists.
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	// Status gate: only runs once the credentials are proven correct.
	switch user.Status {
	case models.StatusActive:
	case models.StatusPending:
		return nil, "", ErrPendingApproval
	case models.StatusRejected:
		return nil, "", ErrRejected
	default:
		return nil, "", ErrAccountNotActive
	}

	var rememberToken string
	if rememberMe {
		rememberToken, err = s.issueRememberToken(user.ID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	s.activity.Log(&user.ID, models.ActionLogin, fmt.Sprintf("User %s logged in", user.Username), meta)

	return user, rememberToken, nil
}

// Logout invalidates the presented remember-me token and records the event.
// It never fails: a missing or already-deleted token is not an error, and the
// caller destroys the session regardless.
func (s *AuthService) Logout(userID, rememberToken string, meta RequestMeta) {
	if rememberToken != "" {
		if err := s.tokenRepo.Delete(rememberToken); err != nil {
			log.Printf("Failed to delete remember token on logout: %v", err)
		}
	}

	if userID != "" {
		s.activity.Log(&userID, models.ActionLogout, "User logged out", meta)
	}
}

// ResumeFromRememberToken re-establishes a session from a remember-me cookie.
// It returns the user to snapshot and true only when the token is unexpired
// and its owner is still active; every other case returns false silently so
// the caller can clear the cookie and continue anonymously. This path runs on
// every request without a session, so it must never fail loudly.
func (s *AuthService) ResumeFromRememberToken(tokenValue string, meta RequestMeta) (*models.User, bool) {
	if tokenValue == "" {
		return nil, false
	}

	token, err := s.tokenRepo.GetValid(tokenValue, models.TokenRememberMe, time.Now())
	if err != nil {
		return nil, false
	}

	user, err := s.userRepo.GetByID(token.UserID)
	if err != nil || !user.IsActive() {
		return nil, false
	}

	s.activity.Log(&user.ID, models.ActionLogin, fmt.Sprintf("User %s resumed session via remember token", user.Username), meta)

	return user, true
}

// issueRememberToken persists a fresh 30-day remember-me token and returns
// its value.
func (s *AuthService) issueRememberToken(userID string) (string, error) {
	value, err := generateToken()
	if err != nil {
		return "", err
	}

	token := &models.Token{
		UserID:    userID,
		Value:     value,
		Kind:      models.TokenRememberMe,
		ExpiresAt: time.Now().Add(rememberTokenTTL),
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return "", err
	}
	return value, nil
}

// generateToken returns a hex-encoded token with 32 bytes of entropy from
// the system CSPRNG.
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
