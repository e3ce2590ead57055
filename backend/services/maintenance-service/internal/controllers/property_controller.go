package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/constants"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// PropertyController serves buildings, units, components and expenses.
type PropertyController struct {
	property *services.PropertyService
}

func NewPropertyController(property *services.PropertyService) *PropertyController {
	return &PropertyController{property: property}
}

// ----------------------------------------------------------------
// Buildings
// ----------------------------------------------------------------

// POST /api/v1/buildings
func (c *PropertyController) CreateBuildingHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.CreateBuildingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.property.CreateBuilding(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, b)
}

// GET /api/v1/buildings
func (c *PropertyController) ListBuildingsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := c.property.ListBuildings(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/buildings/{id}
func (c *PropertyController) GetBuildingHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := c.property.GetBuilding(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// PATCH /api/v1/buildings/{id}
func (c *PropertyController) UpdateBuildingHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateBuildingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := c.property.UpdateBuilding(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// ----------------------------------------------------------------
// Units
// ----------------------------------------------------------------

// POST /api/v1/buildings/{id}/units
func (c *PropertyController) CreateUnitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buildingID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.CreateUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := c.property.CreateUnit(r.Context(), actor, buildingID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, u)
}

// GET /api/v1/buildings/{id}/units
func (c *PropertyController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buildingID, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := c.property.ListUnits(r.Context(), actor, buildingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/units/{id}
func (c *PropertyController) GetUnitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := c.property.GetUnit(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// PATCH /api/v1/units/{id}
func (c *PropertyController) UpdateUnitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateUnitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := c.property.UpdateUnit(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// POST /api/v1/units/{id}/images (multipart, field "image")
func (c *PropertyController) AddUnitImageHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	file, header, ok := formFile(w, r, "image")
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.property.AddUnitImage(r.Context(), actor, id, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.UploadResponse{URL: url})
}

// ----------------------------------------------------------------
// Components
// ----------------------------------------------------------------

// POST /api/v1/buildings/{id}/components
func (c *PropertyController) CreateComponentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buildingID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.CreateComponentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	comp, err := c.property.CreateComponent(r.Context(), actor, buildingID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, comp)
}

// GET /api/v1/buildings/{id}/components
func (c *PropertyController) ListComponentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buildingID, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := c.property.ListComponents(r.Context(), actor, buildingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/components/{id}
func (c *PropertyController) GetComponentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	comp, err := c.property.GetComponent(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, comp)
}

// PATCH /api/v1/components/{id}
func (c *PropertyController) UpdateComponentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateComponentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	comp, err := c.property.UpdateComponent(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, comp)
}

// POST /api/v1/components/{id}/images (multipart, field "image")
func (c *PropertyController) AddComponentImageHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	file, header, ok := formFile(w, r, "image")
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.property.AddComponentImage(r.Context(), actor, id, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.UploadResponse{URL: url})
}

// ----------------------------------------------------------------
// Expenses
// ----------------------------------------------------------------

// POST /api/v1/buildings/{id}/expenses
func (c *PropertyController) CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buildingID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.CreateExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	exp, err := c.property.CreateExpense(r.Context(), actor, buildingID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, exp)
}

// GET /api/v1/buildings/{id}/expenses
func (c *PropertyController) ListExpensesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buildingID, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := c.property.ListExpenses(r.Context(), actor, buildingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// DELETE /api/v1/expenses/{id}
func (c *PropertyController) DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.property.DeleteExpense(r.Context(), actor, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/expenses/summary?year=2025
func (c *PropertyController) ExpenseSummaryHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var year *int
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid year", nil, err)
			return
		}
		year = &y
	}
	summary, err := c.property.ExpenseSummary(r.Context(), actor, year)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// formFile reads one file part of a multipart upload.
func formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadFormBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to parse form", nil, err)
		return nil, nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, field+" is required", nil, err)
		return nil, nil, false
	}
	return file, header, true
}
