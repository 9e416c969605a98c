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

// AccountService handles registration and the admin-driven account lifecycle
// transitions the login status gate reads.
type AccountService struct {
	userRepo        repositories.UserRepository
	tokenRepo       repositories.TokenRepository
	activity        *ActivityLogger
	requireApproval bool
}

// NewAccountService creates a new AccountService. When requireApproval is
// set, newly registered accounts start as pending and cannot log in until an
// admin approves them.
func NewAccountService(userRepo repositories.UserRepository, tokenRepo repositories.TokenRepository, activity *ActivityLogger, requireApproval bool) *AccountService {
	return &AccountService{
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		activity:        activity,
		requireApproval: requireApproval,
	}
}

// Register creates a new account, hashing the password and applying the
// approval policy to the initial status.
func (s *AccountService) Register(user *models.User, meta RequestMeta) error {
	if existing, err := s.userRepo.GetByUsername(user.Username); err == nil && existing != nil {
		return ErrUsernameTaken
	}
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return ErrEmailRegistered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if s.requireApproval {
		user.Status = models.StatusPending
	} else {
		user.Status = models.StatusActive
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.activity.Log(&user.ID, models.ActionRegister, fmt.Sprintf("User %s registered with role %s", user.Username, user.Role), meta)
	return nil
}

// Get returns the account with the given id.
func (s *AccountService) Get(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

// Approve moves a pending account to active.
func (s *AccountService) Approve(userID string, meta RequestMeta) error {
	return s.transition(userID, models.StatusPending, models.StatusActive, models.ActionApprove, meta)
}

// Reject moves a pending account to rejected.
func (s *AccountService) Reject(userID string, meta RequestMeta) error {
	return s.transition(userID, models.StatusPending, models.StatusRejected, models.ActionReject, meta)
}

// Deactivate moves an active account to inactive and revokes its remember
// tokens so the account cannot resume a session.
func (s *AccountService) Deactivate(userID string, meta RequestMeta) error {
	if err := s.transition(userID, models.StatusActive, models.StatusInactive, models.ActionDeactivate, meta); err != nil {
		return err
	}
	if err := s.tokenRepo.DeleteForUser(userID, models.TokenRememberMe); err != nil {
		log.Printf("Failed to revoke remember tokens for deactivated user %s: %v", userID, err)
	}
	return nil
}

// Reactivate moves an inactive account back to active.
func (s *AccountService) Reactivate(userID string, meta RequestMeta) error {
	return s.transition(userID, models.StatusInactive, models.StatusActive, models.ActionReactivate, meta)
}

// transition applies one edge of the status state machine.
func (s *AccountService) transition(userID, from, to, action string, meta RequestMeta) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, repositories.ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if user.Status != from {
		return fmt.Errorf("%w: %s -> %s (current status %s)", ErrInvalidTransition, from, to, user.Status)
	}

	if err := s.userRepo.UpdateStatus(userID, to); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.activity.Log(&userID, action, fmt.Sprintf("Status changed from %s to %s", from, to), meta)
	return nil
}

// PurgeExpiredTokens removes every expired token row. Run periodically so
// presented-but-expired tokens do not accumulate forever.
func (s *AccountService) PurgeExpiredTokens() (int64, error) {
	purged, err := s.tokenRepo.DeleteExpired(time.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if purged > 0 {
		log.Printf("Purged %d expired tokens", purged)
	}
	return purged, nil
}
