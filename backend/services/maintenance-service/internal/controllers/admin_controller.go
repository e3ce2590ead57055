package controllers

import (
	"net/http"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// AdminController exposes the audit trail and manual maintenance jobs.
// Routes are mounted behind RequireRoles(SuperAdmin, Admin).
type AdminController struct {
	audit   *services.AuditService
	sweeper *services.ReconcileService
}

func NewAdminController(audit *services.AuditService, sweeper *services.ReconcileService) *AdminController {
	return &AdminController{audit: audit, sweeper: sweeper}
}

// GET /api/v1/audit/{id}
func (c *AdminController) AuditTrailHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	logs, err := c.audit.ListForTarget(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}

// POST /api/v1/admin/orphan-sweep
func (c *AdminController) OrphanSweepHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	res, err := c.sweeper.RunOrphanSweep(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.Logger.WithField("actor", actor.ID).Infof("Manual orphan sweep: %+v", res)
	utils.RespondWithJSON(w, http.StatusOK, res)
}
