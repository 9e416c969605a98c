package services_test

import (
	"fmt"
	"testing"

	"markethub/internal/models"
	"markethub/internal/repositories"
	"markethub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func TestActivityLogger_Log(t *testing.T) {
	alice := &models.User{ID: "user-alice", Username: "alice", Status: models.StatusActive}

	mockRepo := new(MockUserRepository)
	activityRepo := repositories.NewMockActivityRepository()
	logger := services.NewActivityLogger(activityRepo, mockRepo, nil)

	mockRepo.On("GetByID", alice.ID).Return(alice, nil).Once()

	ok := logger.Log(&alice.ID, models.ActionLogin, "User alice logged in", testMeta)
	assert.True(t, ok)

	entries := activityRepo.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, models.ActionLogin, entries[0].Action)
	assert.Equal(t, testMeta.IPAddress, entries[0].IPAddress)
	assert.Equal(t, testMeta.UserAgent, entries[0].UserAgent)
	assert.Equal(t, alice.ID, *entries[0].UserID)
}

func TestActivityLogger_Log_AnonymousEntry(t *testing.T) {
	mockRepo := new(MockUserRepository)
	activityRepo := repositories.NewMockActivityRepository()
	logger := services.NewActivityLogger(activityRepo, mockRepo, nil)

	// A nil user id skips the existence check entirely
	ok := logger.Log(nil, models.ActionLogout, "Anonymous logout", testMeta)
	assert.True(t, ok)
	assert.Len(t, activityRepo.All(), 1)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestActivityLogger_Log_MissingUserSkipped(t *testing.T) {
	mockRepo := new(MockUserRepository)
	activityRepo := repositories.NewMockActivityRepository()
	logger := services.NewActivityLogger(activityRepo, mockRepo, nil)

	ghost := "user-gone"
	mockRepo.On("GetByID", ghost).
		Return(nil, fmt.Errorf("user with ID %s: %w", ghost, repositories.ErrNotFound)).Once()

	ok := logger.Log(&ghost, models.ActionLogin, "Ghost login", testMeta)
	assert.False(t, ok)
	assert.Empty(t, activityRepo.All())
}

func TestActivityLogger_Log_StoreFailureSwallowed(t *testing.T) {
	mockRepo := new(MockUserRepository)
	failing := new(MockActivityRepo)
	failing.On("Create", mock.AnythingOfType("*models.ActivityLog")).
		Return(fmt.Errorf("table missing"))
	logger := services.NewActivityLogger(failing, mockRepo, nil)

	ok := logger.Log(nil, models.ActionLogin, "whatever", testMeta)
	assert.False(t, ok)
}

func TestActivityLogger_Log_PublisherFailureIgnored(t *testing.T) {
	mockRepo := new(MockUserRepository)
	activityRepo := repositories.NewMockActivityRepository()
	publisher := new(MockPublisher)
	publisher.On("Publish", "security", "security."+models.ActionLogin, mock.Anything).
		Return(fmt.Errorf("broker down"))
	logger := services.NewActivityLogger(activityRepo, mockRepo, publisher)

	ok := logger.Log(nil, models.ActionLogin, "whatever", testMeta)
	assert.True(t, ok) // the entry was persisted; publication is best-effort
	publisher.AssertExpectations(t)
	assert.Len(t, activityRepo.All(), 1)
}
