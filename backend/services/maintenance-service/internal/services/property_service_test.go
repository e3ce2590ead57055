package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildings(t *testing.T) {
	t.Run("Should create a building owned by the actor", func(t *testing.T) {
		env := newTestEnv(t)

		b, err := env.Property.CreateBuilding(env.Ctx, env.Manager, dtos.CreateBuildingRequest{Name: " Linden ", Address: "1 Main St"})

		require.NoError(t, err)
		assert.Equal(t, "Linden", b.Name)
		assert.Equal(t, env.Manager.ID, b.CreatedBy)
		list, err := env.Property.ListBuildings(env.Ctx, env.Admin)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Should refuse building creation by a service provider", func(t *testing.T) {
		env := newTestEnv(t)
		_, login := env.providerLogin(env.Manager, "Any", "HVAC")

		_, err := env.Property.CreateBuilding(env.Ctx, login, dtos.CreateBuildingRequest{Name: "X", Address: "Y"})

		var aerr *internal_utils.AuthorizationError
		assert.True(t, errors.As(err, &aerr))
	})
}

func TestUnits(t *testing.T) {
	t.Run("Should reject a duplicate unit number in the same building", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")
		existing := env.CreateTestUnit(b.ID, "4A")

		// ACT
		_, err := env.Property.CreateUnit(env.Ctx, env.Manager, b.ID, dtos.CreateUnitRequest{UnitNumber: "4a"})

		// ASSERT
		var conflict *internal_utils.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, existing.ID, conflict.Blocking[0].ID)
	})

	t.Run("Should allow the same unit number in another building", func(t *testing.T) {
		env := newTestEnv(t)
		b1 := env.CreateTestBuilding(env.Manager, "Linden")
		b2 := env.CreateTestBuilding(env.Manager, "Poplar")
		env.CreateTestUnit(b1.ID, "4A")

		u, err := env.Property.CreateUnit(env.Ctx, env.Manager, b2.ID, dtos.CreateUnitRequest{UnitNumber: "4A"})

		require.NoError(t, err)
		assert.Equal(t, b2.ID, u.BuildingID)
	})

	t.Run("Should reject an occupant that ends before it starts", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")

		_, err := env.Property.CreateUnit(env.Ctx, env.Manager, b.ID, dtos.CreateUnitRequest{
			UnitNumber: "1",
			Occupant: &dtos.OccupantRequest{
				Name:      "Sam",
				Type:      models.OccupantRenter,
				StartDate: testhelpers.Day(2025, 6, 1),
				EndDate:   testhelpers.DayPtr(2025, 1, 1),
			},
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "occupant.end_date", verr.Field)
	})

	t.Run("Should set and clear the occupant", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")
		u := env.CreateTestUnit(b.ID, "2")

		got, err := env.Property.UpdateUnit(env.Ctx, env.Manager, u.ID, dtos.UpdateUnitRequest{
			Occupant: &dtos.OccupantRequest{Name: "Kim", Type: models.OccupantOwner, StartDate: testhelpers.Day(2024, 1, 1)},
		})
		require.NoError(t, err)
		require.NotNil(t, got.Occupant)
		assert.Equal(t, "Kim", got.Occupant.Name)
		require.NotNil(t, got.Occupant.StartDate)
		assert.True(t, got.Occupant.StartDate.Equal(testhelpers.Day(2024, 1, 1)))

		got, err = env.Property.UpdateUnit(env.Ctx, env.Manager, u.ID, dtos.UpdateUnitRequest{ClearOccupant: true})
		require.NoError(t, err)
		assert.Nil(t, got.Occupant)
	})

	t.Run("Should store an uploaded unit image", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")
		u := env.CreateTestUnit(b.ID, "2")

		url, err := env.Property.AddUnitImage(env.Ctx, env.Manager, u.ID, "kitchen.jpg", strings.NewReader("jpeg"))

		require.NoError(t, err)
		assert.Contains(t, url, "kitchen.jpg")
		stored, _ := env.UnitRepo.GetByID(env.Ctx, u.ID)
		assert.Equal(t, []string{url}, stored.ImageURLs)
	})
}

func TestComponents(t *testing.T) {
	t.Run("Should reject a unit from another building", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")
		other := env.CreateTestBuilding(env.Manager, "Poplar")
		u := env.CreateTestUnit(other.ID, "9")

		_, err := env.Property.CreateComponent(env.Ctx, env.Manager, b.ID, dtos.CreateComponentRequest{
			UnitID:         &u.ID,
			Name:           "Heater",
			Classification: models.Classification{Type: "HVAC"},
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "unit_id", verr.Field)
		assert.Equal(t, 0, env.Store.Writes("components"))
	})

	t.Run("Should create a building-wide component", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")

		c, err := env.Property.CreateComponent(env.Ctx, env.Manager, b.ID, dtos.CreateComponentRequest{
			Name:           "Elevator",
			Brand:          utils.StrPtr("Otis"),
			Classification: models.Classification{Type: "Elevator", Category: "Transport"},
		})

		require.NoError(t, err)
		assert.Nil(t, c.UnitID)
		assert.Equal(t, "Otis", *c.Brand)
	})
}

func TestExpenses(t *testing.T) {
	t.Run("Should sum visible expenses per building and year", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")
		c := env.CreateTestComponent(b.ID, nil, "Roof")
		_, err := env.Property.CreateExpense(env.Ctx, env.Manager, b.ID, dtos.CreateExpenseRequest{ComponentID: c.ID, Year: 2024, Cost: 100})
		require.NoError(t, err)
		_, err = env.Property.CreateExpense(env.Ctx, env.Manager, b.ID, dtos.CreateExpenseRequest{ComponentID: c.ID, Year: 2024, Cost: 50.5})
		require.NoError(t, err)
		_, err = env.Property.CreateExpense(env.Ctx, env.Manager, b.ID, dtos.CreateExpenseRequest{ComponentID: c.ID, Year: 2025, Cost: 10})
		require.NoError(t, err)

		// ACT
		year := 2024
		rows, err := env.Property.ExpenseSummary(env.Ctx, env.Manager, &year)

		// ASSERT
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 150.5, rows[0].Total)
		assert.Equal(t, 2, rows[0].Count)
		assert.Equal(t, "Linden", rows[0].BuildingName)
	})

	t.Run("Should reject a component from another building", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Linden")
		other := env.CreateTestBuilding(env.Manager, "Poplar")
		c := env.CreateTestComponent(other.ID, nil, "Roof")

		_, err := env.Property.CreateExpense(env.Ctx, env.Manager, b.ID, dtos.CreateExpenseRequest{ComponentID: c.ID, Year: 2024, Cost: 1})

		var verr *internal_utils.ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}
