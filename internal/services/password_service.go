package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"markethub/internal/models"
	"markethub/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL     = 24 * time.Hour
	minPasswordLength = 6
)

// Notifier delivers out-of-band notifications (email). Implementations may
// log-and-return in development instead of truly delivering.
type Notifier interface {
	Send(toAddress, subject, htmlBody string) error
}

// PasswordResetService issues and consumes single-use password-reset tokens.
type PasswordResetService struct {
	userRepo     repositories.UserRepository
	tokenRepo    repositories.TokenRepository
	activity     *ActivityLogger
	notifier     Notifier
	resetBaseURL string
}

// NewPasswordResetService creates a new PasswordResetService. resetBaseURL is
// the public URL the emailed token is appended to.
func NewPasswordResetService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, activity *ActivityLogger, notifier Notifier, resetBaseURL string) *PasswordResetService {
	return &PasswordResetService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		activity:     activity,
		notifier:     notifier,
		resetBaseURL: resetBaseURL,
	}
}

// RequestReset issues a 24-hour reset token for the active account with the
// given email and mails a reset link. If delivery fails the token remains
// persisted and valid, and ErrNotificationFailed is returned so the caller
// can tell the user to retry.
func (s *PasswordResetService) RequestReset(email string, meta RequestMeta) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !user.IsActive() {
		return ErrEmailNotFound
	}

	value, err := generateToken()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	token := &models.Token{
		UserID:    user.ID,
		Value:     value,
		Kind:      models.TokenPasswordReset,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The request is audited once the token exists, even if delivery fails.
	s.activity.Log(&user.ID, models.ActionPasswordResetRequested, "Password reset link requested", meta)

	resetURL := fmt.Sprintf("%s?token=%s", s.resetBaseURL, value)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Reset your MarketHub password using <a href=%q>this link</a>. The link expires in 24 hours.</p>", user.Username, resetURL)
	if err := s.notifier.Send(user.Email, "Reset your MarketHub password", body); err != nil {
		log.Printf("Failed to send reset email to %s: %v", user.Email, err)
		return ErrNotificationFailed
	}
	return nil
}

// ResetPassword consumes a reset token and overwrites the owner's password
// hash. The token is deleted unconditionally after a successful reset, so a
// replay finds no token and fails with ErrInvalidOrExpiredToken.
func (s *PasswordResetService) ResetPassword(tokenValue, newPassword string, meta RequestMeta) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	token, err := s.tokenRepo.GetValid(tokenValue, models.TokenPasswordReset, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(token.UserID, string(hashed)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Password update and token delete are separate autocommit statements;
	// the crash window between them is accepted, a leftover token can reset
	// the password once more within its 24-hour expiry.
	if err := s.tokenRepo.Delete(tokenValue); err != nil {
		log.Printf("Failed to delete consumed reset token: %v", err)
	}

	s.activity.Log(&token.UserID, models.ActionPasswordReset, "Password reset via emailed token", meta)
	s.sendConfirmation(token.UserID)

	return nil
}

// sendConfirmation mails a best-effort notice that the password changed.
func (s *PasswordResetService) sendConfirmation(userID string) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		log.Printf("Skipping reset confirmation, user lookup failed: %v", err)
		return
	}
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your MarketHub password was just changed. If this wasn't you, contact support immediately.</p>", user.Username)
	if err := s.notifier.Send(user.Email, "Your MarketHub password was changed", body); err != nil {
		log.Printf("Failed to send reset confirmation to %s: %v", user.Email, err)
	}
}
