package main

import (
	"log"
	"os"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"markethub/internal/models"
	"markethub/internal/repositories"
	"markethub/internal/services"
)

// MockRabbitMQClient is a mock implementation of the RabbitMQ client
type MockRabbitMQClient struct {
	mock.Mock
}

func (m *MockRabbitMQClient) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func (m *MockRabbitMQClient) ConsumeSecurityEvents(messageHandler func(amqp.Delivery) error) error {
	args := m.Called(messageHandler)
	return args.Error(0)
}

func (m *MockRabbitMQClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	os.Exit(m.Run())
}

// TestLoginPublishesSecurityEvent wires the real repositories over an
// in-memory database with a mocked broker and checks that a successful login
// lands both in the audit table and on the security exchange.
func TestLoginPublishesSecurityEvent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}, &models.ActivityLog{}))

	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	activityRepo := repositories.NewGORMActivityRepository(db)

	mockMQ := new(MockRabbitMQClient)
	mockMQ.On("Publish", "security", "security."+models.ActionLogin, mock.Anything).Return(nil).Once()

	activityLogger := services.NewActivityLogger(activityRepo, userRepo, mockMQ)
	authService := services.NewAuthService(userRepo, tokenRepo, activityLogger)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Secret1!"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	assert.NoError(t, userRepo.Create(&models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: string(hashed),
		Role:     models.RoleCustomer,
		Status:   models.StatusActive,
	}))

	user, _, err := authService.Login("alice", "Secret1!", false, services.RequestMeta{IPAddress: "127.0.0.1"})
	assert.NoError(t, err)

	entries, err := activityRepo.ListForUser(user.ID, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, models.ActionLogin, entries[0].Action)
	assert.Equal(t, "127.0.0.1", entries[0].IPAddress)

	mockMQ.AssertExpectations(t)
}

// TestBrokerOutageDoesNotBlockLogin simulates a broker failure: the audit
// entry is still written and the login succeeds.
func TestBrokerOutageDoesNotBlockLogin(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}, &models.ActivityLog{}))

	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	activityRepo := repositories.NewGORMActivityRepository(db)

	mockMQ := new(MockRabbitMQClient)
	mockMQ.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	activityLogger := services.NewActivityLogger(activityRepo, userRepo, mockMQ)
	authService := services.NewAuthService(userRepo, tokenRepo, activityLogger)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Secret1!"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	assert.NoError(t, userRepo.Create(&models.User{
		Username: "bob",
		Email:    "bob@example.com",
		Password: string(hashed),
		Status:   models.StatusActive,
	}))

	user, _, err := authService.Login("bob", "Secret1!", false, services.RequestMeta{})
	assert.NoError(t, err)

	entries, err := activityRepo.ListForUser(user.ID, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}
