package services

import (
	"errors"
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-middleware"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanProvision(t *testing.T) {
	assert.True(t, canProvision(models.RoleSuperAdmin, models.RoleAdmin))
	assert.False(t, canProvision(models.RoleSuperAdmin, models.RolePropertyManager))
	assert.True(t, canProvision(models.RoleAdmin, models.RolePropertyManager))
	assert.False(t, canProvision(models.RoleAdmin, models.RoleAdmin))
	assert.True(t, canProvision(models.RolePropertyManager, models.RoleServiceProvider))
	assert.False(t, canProvision(models.RoleServiceProvider, models.RoleServiceProvider))
}

func TestProvisionUser(t *testing.T) {
	t.Run("Should create a manager with a temporary password", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		email := testhelpers.UniqueEmail("pm")

		// ACT
		resp, err := env.Accounts.ProvisionUser(env.Ctx, env.Admin, dtos.ProvisionUserRequest{
			Email:    email,
			Username: "new-pm",
			Role:     models.RolePropertyManager,
		})

		// ASSERT
		require.NoError(t, err)
		assert.NotEmpty(t, resp.TemporaryPassword)
		require.NotNil(t, resp.User.CreatedBy)
		assert.Equal(t, env.Admin.ID.String(), *resp.User.CreatedBy)

		login, err := env.Accounts.Login(env.Ctx, dtos.LoginRequest{Email: email, Password: resp.TemporaryPassword})
		require.NoError(t, err)
		claims, err := middleware.ValidateToken(login.AccessToken, &env.PrivateKey.PublicKey)
		require.NoError(t, err)
		actor, err := middleware.ActorFromClaims(claims)
		require.NoError(t, err)
		assert.Equal(t, models.RolePropertyManager, actor.Role)
	})

	t.Run("Should name the blocking account for a duplicate in scope", func(t *testing.T) {
		env := newTestEnv(t)
		first, err := env.Accounts.ProvisionUser(env.Ctx, env.Admin, dtos.ProvisionUserRequest{
			Email:    "dup@example.com",
			Username: "dup-one",
			Role:     models.RolePropertyManager,
		})
		require.NoError(t, err)

		_, err = env.Accounts.ProvisionUser(env.Ctx, env.Admin, dtos.ProvisionUserRequest{
			Email:    "DUP@example.com",
			Username: "dup-two",
			Role:     models.RolePropertyManager,
		})

		var conflict *internal_utils.ConflictError
		require.True(t, errors.As(err, &conflict))
		require.Len(t, conflict.Blocking, 1)
		assert.Equal(t, first.User.ID, conflict.Blocking[0].ID.String())
		assert.Equal(t, "An account with this email already exists", conflict.Message)
	})

	t.Run("Should not reveal a duplicate outside scope", func(t *testing.T) {
		env := newTestEnv(t)
		otherAdmin := env.CreateTestUser(models.RoleAdmin, "other-admin", &env.SuperAdmin)
		_, err := env.Accounts.ProvisionUser(env.Ctx, otherAdmin, dtos.ProvisionUserRequest{
			Email:    "hidden@example.com",
			Username: "hidden",
			Role:     models.RolePropertyManager,
		})
		require.NoError(t, err)

		_, err = env.Accounts.ProvisionUser(env.Ctx, env.Admin, dtos.ProvisionUserRequest{
			Email:    "hidden@example.com",
			Username: "mine",
			Role:     models.RolePropertyManager,
		})

		var conflict *internal_utils.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Empty(t, conflict.Blocking)
		assert.Equal(t, "An account with this email already exists", conflict.Message)
	})

	t.Run("Should refuse a role outside the chain", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.Accounts.ProvisionUser(env.Ctx, env.Manager, dtos.ProvisionUserRequest{
			Email:    testhelpers.UniqueEmail("x"),
			Username: "x",
			Role:     models.RoleAdmin,
		})

		var aerr *internal_utils.AuthorizationError
		assert.True(t, errors.As(err, &aerr))
	})

	t.Run("Should link a service provider login to its profile", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.CreateTestProvider(env.Manager, "Sparks", "Electrical")

		resp, err := env.Accounts.ProvisionUser(env.Ctx, env.Manager, dtos.ProvisionUserRequest{
			Email:      testhelpers.UniqueEmail("sp"),
			Username:   "sparks-login",
			Role:       models.RoleServiceProvider,
			Password:   utils.StrPtr("Sparks2025"),
			ProviderID: &p.ID,
		})

		require.NoError(t, err)
		assert.Empty(t, resp.TemporaryPassword)
		linked, _ := env.ProviderRepo.GetByID(env.Ctx, p.ID)
		require.NotNil(t, linked.UserID)
		assert.Equal(t, resp.User.ID, linked.UserID.String())
	})

	t.Run("Should reject a weak password", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.Accounts.ProvisionUser(env.Ctx, env.Admin, dtos.ProvisionUserRequest{
			Email:    testhelpers.UniqueEmail("w"),
			Username: "weak",
			Role:     models.RolePropertyManager,
			Password: utils.StrPtr("short"),
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "password", verr.Field)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Should reject a wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		email := testhelpers.UniqueEmail("pm")
		_, err := env.Accounts.ProvisionUser(env.Ctx, env.Admin, dtos.ProvisionUserRequest{
			Email:    email,
			Username: "pm-login",
			Role:     models.RolePropertyManager,
			Password: utils.StrPtr("Correct123"),
		})
		require.NoError(t, err)

		_, err = env.Accounts.Login(env.Ctx, dtos.LoginRequest{Email: email, Password: "Wrong1234"})

		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("Should reject an unknown email the same way", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.Accounts.Login(env.Ctx, dtos.LoginRequest{Email: "nobody@example.com", Password: "Whatever1"})

		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}
