package models

import (
	"time"

	"github.com/google/uuid"
)

// ContingencyDocument is an emergency plan or similar file. UploadedBy holds
// the uploader's display name.
type ContingencyDocument struct {
	ID           uuid.UUID  `json:"id"`
	BuildingID   *uuid.UUID `json:"building_id,omitempty"`
	Title        string     `json:"title"`
	FileURL      string     `json:"file_url"`
	UploadedBy   string     `json:"uploaded_by"`
	UploadedByID uuid.UUID  `json:"uploaded_by_id"`
	UploadedAt   time.Time  `json:"uploaded_at"`
}
