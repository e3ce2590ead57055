package seeding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// DefaultSuperAdminID is stable so repeated seeding is a no-op.
var DefaultSuperAdminID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

// SeedDefaultSuperAdmin creates the root account that every ownership chain
// starts from. password must pass utils.ValidatePassword.
func SeedDefaultSuperAdmin(ctx context.Context, userRepo repositories.UserRepository, email, password string) error {
	existing, err := userRepo.GetByID(ctx, DefaultSuperAdminID)
	if err != nil {
		return fmt.Errorf("error checking for existing super admin by ID: %w", err)
	}
	if existing != nil {
		utils.Logger.Infof("Default super admin already exists (ID=%s); skipping seed.", existing.ID)
		return nil
	}

	if err := utils.ValidatePassword(password); err != nil {
		return fmt.Errorf("default super admin password rejected: %w", err)
	}
	hashedPass, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to bcrypt-hash default super admin password: %w", err)
	}

	admin := &models.User{
		ID:           DefaultSuperAdminID,
		Email:        email,
		Username:     "superadmin",
		Role:         models.RoleSuperAdmin,
		PasswordHash: hashedPass,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to insert default super admin: %w", err)
	}

	utils.Logger.Infof("Successfully seeded default super admin (ID=%s, email=%s).", admin.ID, admin.Email)
	return nil
}
