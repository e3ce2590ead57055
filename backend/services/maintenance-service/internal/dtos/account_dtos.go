package dtos

import (
	"github.com/google/uuid"
	shared_dtos "github.com/lazar0830/sos-condo-sub000/backend/shared/go-dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type ProvisionUserRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Username   string          `json:"username" validate:"required,min=2,max=100"`
	Role       models.RoleType `json:"role" validate:"required,oneof=ADMIN PROPERTY_MANAGER SERVICE_PROVIDER"`
	Password   *string         `json:"password,omitempty"`
	ProviderID *uuid.UUID      `json:"provider_id,omitempty"`
}

type ProvisionUserResponse struct {
	User *shared_dtos.User `json:"user"`
	// TemporaryPassword is only set when no password was supplied.
	TemporaryPassword string `json:"temporary_password,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	ExpiresIn   int64             `json:"expires_in"`
	User        *shared_dtos.User `json:"user"`
}
