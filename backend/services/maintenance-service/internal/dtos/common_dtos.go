package dtos

import (
	"github.com/google/uuid"
)

type HealthCheckResponse struct {
	Status string `json:"status"`
}

// DeleteResponse confirms a delete and what it took with it.
type DeleteResponse struct {
	Message string         `json:"message"`
	Removed map[string]int `json:"removed,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type UploadResponse struct {
	ID  *uuid.UUID `json:"id,omitempty"`
	URL string     `json:"url"`
}
