package dtos

import (
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

// User is the public projection of an account; it never carries the hash.
type User struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Username  string          `json:"username"`
	Role      models.RoleType `json:"role"`
	CreatedBy *string         `json:"created_by,omitempty"`
}

func NewUserFromModel(u models.User) User {
	out := User{
		ID:       u.ID.String(),
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
	if u.CreatedBy != nil {
		s := u.CreatedBy.String()
		out.CreatedBy = &s
	}
	return out
}

func NewUsersFromModels(list []*models.User) []User {
	out := make([]User, 0, len(list))
	for _, u := range list {
		out = append(out, NewUserFromModel(*u))
	}
	return out
}
