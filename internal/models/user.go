package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role carried in the bearer token
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a booking-service account. Users are provisioned elsewhere;
// this service only reads them.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
