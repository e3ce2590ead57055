package app

import (
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-seeding"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeeder(h *testhelpers.TestHelper) *Seeder {
	repos := services.Repositories{
		Buildings:     h.BuildingRepo,
		Units:         h.UnitRepo,
		Components:    h.ComponentRepo,
		Tasks:         h.TaskRepo,
		Requests:      h.RequestRepo,
		Providers:     h.ProviderRepo,
		Expenses:      h.ExpenseRepo,
		Users:         h.UserRepo,
		Notifications: h.NotificationRepo,
		Documents:     h.ContingencyRepo,
		AuditLogs:     h.AuditRepo,
	}
	bus := events.NewLocalBus()
	scope := services.NewScopeService(repos)
	audit := services.NewAuditService(repos.AuditLogs)
	return &Seeder{
		Repos:     repos,
		Accounts:  services.NewAccountService(repos, scope, h.PrivateKey, audit, bus),
		Property:  services.NewPropertyService(repos, scope, nil, audit, bus),
		Providers: services.NewProviderService(repos, scope, utils.SyntaxOnlyContactValidator(), audit, bus),
		Tasks:     services.NewTaskService(repos, scope, services.NewOpenAIService(""), audit, bus),
	}
}

func TestSeedAllTestData(t *testing.T) {
	t.Run("Should load the demo fixture once", func(t *testing.T) {
		// ARRANGE
		h := testhelpers.NewTestHelper(t)
		require.NoError(t, seeding.SeedDefaultSuperAdmin(h.Ctx, h.UserRepo, "root@example.com", "RootPass123"))
		seeder := newTestSeeder(h)

		// ACT
		require.NoError(t, seeder.SeedAllTestData(h.Ctx))
		require.NoError(t, seeder.SeedAllTestData(h.Ctx))

		// ASSERT
		buildings, err := h.BuildingRepo.List(h.Ctx)
		require.NoError(t, err)
		require.Len(t, buildings, 1)
		units, _ := h.UnitRepo.ListByBuildingID(h.Ctx, buildings[0].ID)
		assert.Len(t, units, 3)

		tasks, _ := h.TaskRepo.ListByBuildingID(h.Ctx, buildings[0].ID)
		// quarterly master + 4 instances, plus one one-time task
		assert.Len(t, tasks, 6)

		providers, _ := h.ProviderRepo.List(h.Ctx)
		require.Len(t, providers, 2)
		linked := 0
		for _, p := range providers {
			if p.UserID != nil {
				linked++
			}
		}
		assert.Equal(t, 1, linked)

		users, _ := h.UserRepo.List(h.Ctx)
		roles := map[models.RoleType]int{}
		for _, u := range users {
			roles[u.Role]++
		}
		assert.Equal(t, 1, roles[models.RoleAdmin])
		assert.Equal(t, 1, roles[models.RolePropertyManager])
		assert.Equal(t, 1, roles[models.RoleServiceProvider])
	})
}
