package controllers

import (
	"net/http"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type ProviderController struct {
	providers *services.ProviderService
}

func NewProviderController(providers *services.ProviderService) *ProviderController {
	return &ProviderController{providers: providers}
}

// POST /api/v1/providers
func (c *ProviderController) CreateProviderHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.CreateProviderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := c.providers.CreateProvider(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/v1/providers
func (c *ProviderController) ListProvidersHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := c.providers.ListProviders(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/providers/{id}
func (c *ProviderController) GetProviderHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := c.providers.GetProvider(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// PATCH /api/v1/providers/{id}
func (c *ProviderController) UpdateProviderHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateProviderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := c.providers.UpdateProvider(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
