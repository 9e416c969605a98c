package models

import "time"

// Audit action tags recorded by the activity logger.
const (
	ActionLogin                  = "user_login"
	ActionLogout                 = "user_logout"
	ActionRegister               = "user_register"
	ActionPasswordReset          = "password_reset"
	ActionPasswordResetRequested = "password_reset_requested"
	ActionApprove                = "user_approve"
	ActionReject                 = "user_reject"
	ActionDeactivate             = "user_deactivate"
	ActionReactivate             = "user_reactivate"
)

// ActivityLog is an append-only audit record for security-relevant events.
// UserID is a pointer because an entry may outlive its user, or refer to an
// anonymous request.
type ActivityLog struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      *string   `json:"user_id" gorm:"index;type:varchar(36)"`
	Action      string    `json:"action" gorm:"index;type:varchar(50)"`
	Description string    `json:"description" gorm:"type:varchar(255)"`
	IPAddress   string    `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent   string    `json:"user_agent" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
}
