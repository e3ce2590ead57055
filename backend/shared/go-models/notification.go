package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLink points the reader at the entity a notification is about.
type NotificationLink struct {
	View     string    `json:"view"`
	EntityID uuid.UUID `json:"entity_id"`
}

type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"is_read"`
	Link      *NotificationLink `json:"link,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
