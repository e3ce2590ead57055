package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type CreateBuildingRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"required,min=1,max=500"`
}

type UpdateBuildingRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,min=1,max=500"`
}

type OccupantRequest struct {
	Name      string              `json:"name" validate:"required"`
	Type      models.OccupantType `json:"type" validate:"required,oneof=OWNER RENTER"`
	StartDate time.Time           `json:"start_date" validate:"required"`
	EndDate   *time.Time          `json:"end_date,omitempty"`
}

type CreateUnitRequest struct {
	UnitNumber string           `json:"unit_number" validate:"required,min=1,max=50"`
	Occupant   *OccupantRequest `json:"occupant,omitempty" validate:"omitempty"`
}

type UpdateUnitRequest struct {
	UnitNumber    *string          `json:"unit_number,omitempty" validate:"omitempty,min=1,max=50"`
	Occupant      *OccupantRequest `json:"occupant,omitempty" validate:"omitempty"`
	ClearOccupant bool             `json:"clear_occupant,omitempty"`
}

type CreateComponentRequest struct {
	UnitID          *uuid.UUID            `json:"unit_id,omitempty"`
	Classification  models.Classification `json:"classification"`
	Name            string                `json:"name" validate:"required,min=1,max=200"`
	Brand           *string               `json:"brand,omitempty"`
	Model           *string               `json:"model,omitempty"`
	SerialNumber    *string               `json:"serial_number,omitempty"`
	InstallDate     *time.Time            `json:"install_date,omitempty"`
	WarrantyEndDate *time.Time            `json:"warranty_end_date,omitempty"`
}

type UpdateComponentRequest struct {
	UnitID          *uuid.UUID             `json:"unit_id,omitempty"`
	ClearUnit       bool                   `json:"clear_unit,omitempty"`
	Classification  *models.Classification `json:"classification,omitempty"`
	Name            *string                `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Brand           *string                `json:"brand,omitempty"`
	Model           *string                `json:"model,omitempty"`
	SerialNumber    *string                `json:"serial_number,omitempty"`
	InstallDate     *time.Time             `json:"install_date,omitempty"`
	WarrantyEndDate *time.Time             `json:"warranty_end_date,omitempty"`
}

type CreateExpenseRequest struct {
	ComponentID uuid.UUID `json:"component_id" validate:"required"`
	Year        int       `json:"year" validate:"required,gte=1900,lte=3000"`
	Cost        float64   `json:"cost" validate:"gte=0"`
	Description *string   `json:"description,omitempty"`
}

// ExpenseSummary totals expenses of one building for one year.
type ExpenseSummary struct {
	BuildingID   uuid.UUID `json:"building_id"`
	BuildingName string    `json:"building_name"`
	Year         int       `json:"year"`
	Total        float64   `json:"total"`
	Count        int       `json:"count"`
}
