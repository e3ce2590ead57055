// go-models/actor.go
package models

import (
	"github.com/google/uuid"
)

type RoleType string

const (
	RoleSuperAdmin      RoleType = "SUPER_ADMIN"
	RoleAdmin           RoleType = "ADMIN"
	RolePropertyManager RoleType = "PROPERTY_MANAGER"
	RoleServiceProvider RoleType = "SERVICE_PROVIDER"
)

func (r RoleType) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RolePropertyManager, RoleServiceProvider:
		return true
	}
	return false
}

// IsManagement reports whether the role manages buildings (everything but
// service providers).
func (r RoleType) IsManagement() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RolePropertyManager
}

// Actor is the authenticated identity performing an operation. It is always
// passed explicitly into services; nothing reads it from global state.
type Actor struct {
	ID          uuid.UUID `json:"id"`
	Role        RoleType  `json:"role"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
}

func (a Actor) IsSuperAdmin() bool { return a.Role == RoleSuperAdmin }
