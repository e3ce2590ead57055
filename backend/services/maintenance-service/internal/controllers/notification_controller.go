package controllers

import (
	"net/http"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type NotificationController struct {
	notes *services.NotificationService
}

func NewNotificationController(notes *services.NotificationService) *NotificationController {
	return &NotificationController{notes: notes}
}

// GET /api/v1/notifications
func (c *NotificationController) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := c.notes.List(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/notifications/{id}/read
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.notes.MarkRead(r.Context(), actor, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	n, err := c.notes.MarkAllRead(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MarkAllReadResponse{Updated: n})
}

// DELETE /api/v1/notifications/{id}
func (c *NotificationController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.notes.Delete(r.Context(), actor, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
