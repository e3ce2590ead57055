package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceProvider is an external contractor. UserID links the profile to
// a login when the provider has one.
type ServiceProvider struct {
	Versioned
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Specialty   string     `json:"specialty"`
	Phone       *string    `json:"phone,omitempty"`
	ContactName *string    `json:"contact_name,omitempty"`
	Address     *string    `json:"address,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
