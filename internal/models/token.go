package models

import "time"

// Token kinds. Both kinds share one table with a kind discriminator; the
// validation rules differ per kind and live in the services layer.
const (
	TokenRememberMe    = "remember_me"
	TokenPasswordReset = "password_reset"
)

// Token is a durable secondary credential: either a remember-me token
// (multi-use until logout or expiry) or a password-reset token (single-use,
// deleted on successful reset).
type Token struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36)"`
	Value     string    `json:"-" gorm:"uniqueIndex;type:varchar(64)"`
	Kind      string    `json:"kind" gorm:"index;type:varchar(20)"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
