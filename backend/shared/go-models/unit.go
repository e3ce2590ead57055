// go-models/unit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type OccupantType string

const (
	OccupantOwner  OccupantType = "OWNER"
	OccupantRenter OccupantType = "RENTER"
)

// Occupant is stored as a JSON blob on the unit row.
type Occupant struct {
	Name      string       `json:"name"`
	Type      OccupantType `json:"type"`
	StartDate *time.Time   `json:"start_date,omitempty"`
	EndDate   *time.Time   `json:"end_date,omitempty"`
}

// Unit represents a single addressable space inside a building.
type Unit struct {
	ID         uuid.UUID `json:"id"`
	BuildingID uuid.UUID `json:"building_id"`
	UnitNumber string    `json:"unit_number"`
	Occupant   *Occupant `json:"occupant,omitempty"`
	ImageURLs  []string  `json:"image_urls,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
