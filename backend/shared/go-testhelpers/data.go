package testhelpers

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/stretchr/testify/require"
)

// UniqueEmail returns a throwaway address unique to this run.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// CreateTestUser stores an account and returns it as an Actor.
func (h *TestHelper) CreateTestUser(role models.RoleType, name string, createdBy *models.Actor) models.Actor {
	u := &models.User{
		ID:       uuid.New(),
		Email:    UniqueEmail(string(role)),
		Username: name,
		Role:     role,
	}
	if createdBy != nil {
		id := createdBy.ID
		u.CreatedBy = &id
	}
	require.NoError(h.T, h.UserRepo.Create(h.Ctx, u))
	return u.AsActor()
}

func (h *TestHelper) CreateTestBuilding(owner models.Actor, name string) *models.Building {
	b := &models.Building{
		ID:        uuid.New(),
		Name:      name,
		Address:   name + " address",
		CreatedBy: owner.ID,
	}
	require.NoError(h.T, h.BuildingRepo.Create(h.Ctx, b))
	return b
}

func (h *TestHelper) CreateTestUnit(buildingID uuid.UUID, unitNum string) *models.Unit {
	u := &models.Unit{
		ID:         uuid.New(),
		BuildingID: buildingID,
		UnitNumber: unitNum,
	}
	require.NoError(h.T, h.UnitRepo.Create(h.Ctx, u))
	return u
}

func (h *TestHelper) CreateTestComponent(buildingID uuid.UUID, unitID *uuid.UUID, name string) *models.Component {
	c := &models.Component{
		ID:         uuid.New(),
		BuildingID: buildingID,
		UnitID:     unitID,
		Name:       name,
		Classification: models.Classification{
			Type:     "HVAC",
			Category: "Heating",
		},
	}
	require.NoError(h.T, h.ComponentRepo.Create(h.Ctx, c))
	return c
}

// CreateTestTask stores a one-time task dated on taskDate.
func (h *TestHelper) CreateTestTask(buildingID uuid.UUID, name, specialty string, taskDate time.Time) *models.MaintenanceTask {
	t := &models.MaintenanceTask{
		ID:         uuid.New(),
		BuildingID: buildingID,
		Name:       name,
		Specialty:  specialty,
		Recurrence: models.RecurrenceOneTime,
		Status:     models.TaskStatusNew,
		TaskDate:   &taskDate,
	}
	require.NoError(h.T, h.TaskRepo.Create(h.Ctx, t))
	return t
}

// CreateTestMasterTask stores a recurring master without its instances.
func (h *TestHelper) CreateTestMasterTask(buildingID uuid.UUID, recurrence models.RecurrenceType, start, end time.Time) *models.MaintenanceTask {
	t := &models.MaintenanceTask{
		ID:         uuid.New(),
		BuildingID: buildingID,
		Name:       "Recurring " + string(recurrence),
		Specialty:  "HVAC",
		Recurrence: recurrence,
		Status:     models.TaskStatusNew,
		StartDate:  &start,
		EndDate:    &end,
	}
	require.NoError(h.T, h.TaskRepo.Create(h.Ctx, t))
	return t
}

func (h *TestHelper) CreateTestProvider(createdBy models.Actor, name, specialty string) *models.ServiceProvider {
	p := &models.ServiceProvider{
		ID:        uuid.New(),
		Name:      name,
		Email:     UniqueEmail("provider"),
		Specialty: specialty,
		CreatedBy: createdBy.ID,
	}
	require.NoError(h.T, h.ProviderRepo.Create(h.Ctx, p))
	return p
}

// CreateTestRequest stores a request in status with a matching history.
func (h *TestHelper) CreateTestRequest(task *models.MaintenanceTask, providerID uuid.UUID, status models.RequestStatusType) *models.ServiceRequest {
	r := &models.ServiceRequest{
		ID:         uuid.New(),
		TaskID:     task.ID,
		ProviderID: providerID,
		Specialty:  task.Specialty,
		Status:     status,
		StatusHistory: []models.StatusChange{
			{Status: status, ChangedAt: time.Now(), ChangedBy: "fixture"},
		},
	}
	require.NoError(h.T, h.RequestRepo.Create(h.Ctx, r))
	return r
}

func (h *TestHelper) CreateTestExpense(buildingID, componentID uuid.UUID, year int, cost float64) *models.Expense {
	e := &models.Expense{
		ID:          uuid.New(),
		BuildingID:  buildingID,
		ComponentID: componentID,
		Year:        year,
		Cost:        cost,
	}
	require.NoError(h.T, h.ExpenseRepo.Create(h.Ctx, e))
	return e
}
