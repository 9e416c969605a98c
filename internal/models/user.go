package models

import "gorm.io/gorm"

// Roles a user can hold. Role and status are independent axes: a vendor can
// be pending, active or rejected just like a customer.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// Account lifecycle statuses. Only StatusActive may complete a login.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusRejected  = "rejected"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// User represents an account on the marketplace: customer, vendor or admin.
type User struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username    string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email       string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	DisplayName string `json:"display_name" gorm:"type:varchar(100)" validate:"max=100"`
	Password    string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role        string `json:"role" gorm:"type:varchar(20);default:'customer'" validate:"omitempty,oneof=customer vendor admin"`
	Status      string `json:"status" gorm:"type:varchar(20);default:'pending'" validate:"omitempty,oneof=pending active rejected inactive suspended"`
	gorm.Model  `json:"-"` // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
