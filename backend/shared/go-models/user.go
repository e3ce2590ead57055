package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a login-capable account. CreatedBy forms the ownership chain
// SuperAdmin -> Admin -> PropertyManager.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	Role         RoleType   `json:"role"`
	PasswordHash string     `json:"-"` // Never serialize to JSON
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AsActor projects the account onto the identity used by the services.
func (u *User) AsActor() Actor {
	return Actor{ID: u.ID, Role: u.Role, DisplayName: u.Username, Email: u.Email}
}
