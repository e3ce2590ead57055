package models

import (
	"time"

	"github.com/google/uuid"
)

// Classification places a component in the equipment taxonomy
// (e.g. HVAC / Heating / Boiler).
type Classification struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category,omitempty"`
}

// Component is a physical piece of equipment in a building, optionally
// located inside one of its units.
type Component struct {
	ID              uuid.UUID      `json:"id"`
	BuildingID      uuid.UUID      `json:"building_id"`
	UnitID          *uuid.UUID     `json:"unit_id,omitempty"`
	Classification  Classification `json:"classification"`
	Name            string         `json:"name"`
	Brand           *string        `json:"brand,omitempty"`
	Model           *string        `json:"model,omitempty"`
	SerialNumber    *string        `json:"serial_number,omitempty"`
	InstallDate     *time.Time     `json:"install_date,omitempty"`
	WarrantyEndDate *time.Time     `json:"warranty_end_date,omitempty"`
	ImageURLs       []string       `json:"image_urls,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
