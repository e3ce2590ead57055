package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// CascadeController serves every DELETE that can take dependents with it.
type CascadeController struct {
	cascade *services.CascadeService
}

func NewCascadeController(cascade *services.CascadeService) *CascadeController {
	return &CascadeController{cascade: cascade}
}

type deleteFunc func(ctx context.Context, actor models.Actor, id uuid.UUID) (*services.CascadeResult, error)

func (c *CascadeController) handle(del deleteFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		res, err := del(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, dtos.DeleteResponse{Message: res.Message, Removed: res.Removed})
	}
}

// DELETE /api/v1/buildings/{id}
func (c *CascadeController) DeleteBuildingHandler(w http.ResponseWriter, r *http.Request) {
	c.handle(c.cascade.DeleteBuilding)(w, r)
}

// DELETE /api/v1/tasks/{id}
func (c *CascadeController) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	c.handle(c.cascade.DeleteTask)(w, r)
}

// DELETE /api/v1/providers/{id}
func (c *CascadeController) DeleteProviderHandler(w http.ResponseWriter, r *http.Request) {
	c.handle(c.cascade.DeleteProvider)(w, r)
}

// DELETE /api/v1/units/{id}
func (c *CascadeController) DeleteUnitHandler(w http.ResponseWriter, r *http.Request) {
	c.handle(c.cascade.DeleteUnit)(w, r)
}

// DELETE /api/v1/components/{id}
func (c *CascadeController) DeleteComponentHandler(w http.ResponseWriter, r *http.Request) {
	c.handle(c.cascade.DeleteComponent)(w, r)
}
