package services_test

import (
	"fmt"
	"testing"
	"time"

	"markethub/internal/models"
	"markethub/internal/repositories"
	"markethub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAccountService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, repositories.NewMockTokenRepository(), newTestLogger(mockRepo), false)

	user := &models.User{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "password123",
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, notFound("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFound("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockRepo.On("GetByID", mock.Anything).Return(user, nil)

	err := accountService.Register(user, testMeta)
	assert.NoError(t, err)
	// Approval not required: the account is immediately active
	assert.Equal(t, models.StatusActive, user.Status)
	assert.Equal(t, models.RoleCustomer, user.Role)
	// The stored password is a bcrypt hash of the original
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)
}

func TestAccountService_Register_ApprovalPolicy(t *testing.T) {
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, repositories.NewMockTokenRepository(), newTestLogger(mockRepo), true)

	user := &models.User{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "password123",
		Role:     models.RoleVendor,
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, notFound("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFound("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockRepo.On("GetByID", mock.Anything).Return(user, nil)

	err := accountService.Register(user, testMeta)
	assert.NoError(t, err)
	// Approval required: the new vendor waits in pending
	assert.Equal(t, models.StatusPending, user.Status)
	assert.Equal(t, models.RoleVendor, user.Role)
}

func TestAccountService_Register_Duplicates(t *testing.T) {
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, repositories.NewMockTokenRepository(), newTestLogger(mockRepo), false)

	user := &models.User{Username: "carol", Email: "carol@example.com", Password: "password123"}

	mockRepo.On("GetByUsername", user.Username).Return(&models.User{ID: "1"}, nil).Once()
	err := accountService.Register(user, testMeta)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)

	mockRepo.On("GetByUsername", user.Username).Return(nil, notFound("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: "1"}, nil).Once()
	err = accountService.Register(user, testMeta)
	assert.ErrorIs(t, err, services.ErrEmailRegistered)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_Transitions(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		call func(s *services.AccountService, id string) error
	}{
		{"approve", models.StatusPending, models.StatusActive,
			func(s *services.AccountService, id string) error { return s.Approve(id, testMeta) }},
		{"reject", models.StatusPending, models.StatusRejected,
			func(s *services.AccountService, id string) error { return s.Reject(id, testMeta) }},
		{"deactivate", models.StatusActive, models.StatusInactive,
			func(s *services.AccountService, id string) error { return s.Deactivate(id, testMeta) }},
		{"reactivate", models.StatusInactive, models.StatusActive,
			func(s *services.AccountService, id string) error { return s.Reactivate(id, testMeta) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &models.User{ID: "user-x", Username: "x", Status: tc.from}
			mockRepo := new(MockUserRepository)
			accountService := services.NewAccountService(mockRepo, repositories.NewMockTokenRepository(), newTestLogger(mockRepo), true)

			mockRepo.On("GetByID", user.ID).Return(user, nil)
			mockRepo.On("UpdateStatus", user.ID, tc.to).Return(nil).Once()

			assert.NoError(t, tc.call(accountService, user.ID))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAccountService_InvalidTransition(t *testing.T) {
	// Approving an already-active account is not a legal edge
	user := &models.User{ID: "user-x", Username: "x", Status: models.StatusActive}
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, repositories.NewMockTokenRepository(), newTestLogger(mockRepo), true)

	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()

	err := accountService.Approve(user.ID, testMeta)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestAccountService_Deactivate_RevokesRememberTokens(t *testing.T) {
	user := &models.User{ID: "user-x", Username: "x", Status: models.StatusActive}
	mockRepo := new(MockUserRepository)
	tokenRepo := repositories.NewMockTokenRepository()
	accountService := services.NewAccountService(mockRepo, tokenRepo, newTestLogger(mockRepo), true)

	assert.NoError(t, tokenRepo.Create(&models.Token{
		UserID:    user.ID,
		Value:     "x-remember",
		Kind:      models.TokenRememberMe,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	mockRepo.On("GetByID", user.ID).Return(user, nil)
	mockRepo.On("UpdateStatus", user.ID, models.StatusInactive).Return(nil).Once()

	assert.NoError(t, accountService.Deactivate(user.ID, testMeta))

	_, err := tokenRepo.GetValid("x-remember", models.TokenRememberMe, time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAccountService_Get(t *testing.T) {
	mockRepo := new(MockUserRepository)
	accountService := services.NewAccountService(mockRepo, repositories.NewMockTokenRepository(), newTestLogger(mockRepo), false)

	carol := &models.User{ID: "user-carol", Username: "carol", Status: models.StatusActive}
	mockRepo.On("GetByID", carol.ID).Return(carol, nil).Once()
	mockRepo.On("GetByID", "user-ghost").Return(nil, notFound("user user-ghost")).Once()

	user, err := accountService.Get(carol.ID)
	assert.NoError(t, err)
	assert.Equal(t, carol.Username, user.Username)

	_, err = accountService.Get("user-ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAccountService_PurgeExpiredTokens(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokenRepo := repositories.NewMockTokenRepository()
	accountService := services.NewAccountService(mockRepo, tokenRepo, newTestLogger(mockRepo), true)

	assert.NoError(t, tokenRepo.Create(&models.Token{
		UserID: "u1", Value: "fresh", Kind: models.TokenRememberMe,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	assert.NoError(t, tokenRepo.Create(&models.Token{
		UserID: "u1", Value: "stale", Kind: models.TokenPasswordReset,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	purged, err := accountService.PurgeExpiredTokens()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// The unexpired token survives the sweep
	_, err = tokenRepo.GetValid("fresh", models.TokenRememberMe, time.Now())
	assert.NoError(t, err)
}
