package services

import (
	"encoding/json"
	"log"

	"markethub/internal/models"
	"markethub/internal/repositories"
)

// EventPublisher publishes security events to the message broker. A nil
// publisher disables event publication.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// RequestMeta carries network metadata extracted from the incoming request.
// Fields may be empty when unavailable; no validation is applied.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ActivityLogger appends security-relevant audit entries. Every call is
// best-effort: failures are recorded to the diagnostic log and never
// propagate to the caller.
type ActivityLogger struct {
	activityRepo repositories.ActivityRepository
	userRepo     repositories.UserRepository
	publisher    EventPublisher
}

// NewActivityLogger creates a new ActivityLogger.
func NewActivityLogger(activityRepo repositories.ActivityRepository, userRepo repositories.UserRepository, publisher EventPublisher) *ActivityLogger {
	return &ActivityLogger{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		publisher:    publisher,
	}
}

// Log appends an audit entry and reports whether it was recorded. If userID
// is non-nil and that user no longer exists, the entry is skipped rather
// than inserted with a dangling reference.
func (l *ActivityLogger) Log(userID *string, action, description string, meta RequestMeta) bool {
	if l.activityRepo == nil {
		return false
	}

	if userID != nil {
		if _, err := l.userRepo.GetByID(*userID); err != nil {
			log.Printf("Skipping activity log %s: user lookup failed: %v", action, err)
			return false
		}
	}

	entry := &models.ActivityLog{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}
	if err := l.activityRepo.Create(entry); err != nil {
		log.Printf("Failed to record activity %s: %v", action, err)
		return false
	}

	l.publish(entry)
	return true
}

// publish mirrors the audit entry onto the security event exchange.
func (l *ActivityLogger) publish(entry *models.ActivityLog) {
	if l.publisher == nil {
		return
	}

	body, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Failed to marshal activity event: %v", err)
		return
	}
	if err := l.publisher.Publish("security", "security."+entry.Action, body); err != nil {
		log.Printf("Warning: failed to publish security event %s: %v", entry.Action, err)
	}
}
