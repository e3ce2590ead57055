package services

import (
	"errors"
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviders(t *testing.T) {
	t.Run("Should create a provider and reject a scoped duplicate email", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		in := dtos.CreateProviderRequest{Name: "Flow Plumbing", Email: "Flow@Example.com", Specialty: "Plumbing", Phone: utils.StrPtr("+15145550100")}

		// ACT
		p, err := env.Provider.CreateProvider(env.Ctx, env.Manager, in)
		require.NoError(t, err)
		_, dupErr := env.Provider.CreateProvider(env.Ctx, env.Manager, in)

		// ASSERT
		assert.Equal(t, "flow@example.com", p.Email)
		var conflict *internal_utils.ConflictError
		require.True(t, errors.As(dupErr, &conflict))
		assert.Equal(t, p.ID, conflict.Blocking[0].ID)
	})

	t.Run("Should reject a phone that is not E.164", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.Provider.CreateProvider(env.Ctx, env.Manager, dtos.CreateProviderRequest{
			Name:      "Flow",
			Email:     "flow@example.com",
			Specialty: "Plumbing",
			Phone:     utils.StrPtr("555-0100"),
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "phone", verr.Field)
	})

	t.Run("Should hide providers created by another manager", func(t *testing.T) {
		env := newTestEnv(t)
		other := env.CreateTestUser(models.RolePropertyManager, "other", &env.Admin)
		hidden := env.CreateTestProvider(other, "Hidden", "HVAC")
		shared := env.CreateTestProvider(env.Admin, "Shared", "HVAC")

		list, err := env.Provider.ListProviders(env.Ctx, env.Manager)
		require.NoError(t, err)
		_, getErr := env.Provider.GetProvider(env.Ctx, env.Manager, hidden.ID)

		require.Len(t, list, 1)
		assert.Equal(t, shared.ID, list[0].ID)
		var nf *internal_utils.NotFoundError
		assert.True(t, errors.As(getErr, &nf))
	})

	t.Run("Should let a provider edit its own profile only", func(t *testing.T) {
		env := newTestEnv(t)
		p, login := env.providerLogin(env.Manager, "Self", "HVAC")

		got, err := env.Provider.UpdateProvider(env.Ctx, login, p.ID, dtos.UpdateProviderRequest{ContactName: utils.StrPtr("Jo")})

		require.NoError(t, err)
		assert.Equal(t, "Jo", *got.ContactName)
		list, _ := env.Provider.ListProviders(env.Ctx, login)
		assert.Len(t, list, 1)
	})
}
