package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// DocumentController serves contingency documents.
type DocumentController struct {
	docs *services.DocumentService
}

func NewDocumentController(docs *services.DocumentService) *DocumentController {
	return &DocumentController{docs: docs}
}

// POST /api/v1/documents (multipart: title, file, optional building_id)
func (c *DocumentController) UploadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	file, header, ok := formFile(w, r, "file")
	if !ok {
		return
	}
	defer file.Close()

	var buildingID *uuid.UUID
	if raw := r.FormValue("building_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid building_id", nil, err)
			return
		}
		buildingID = &id
	}

	doc, err := c.docs.Upload(r.Context(), actor, buildingID, r.FormValue("title"), header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, doc)
}

// GET /api/v1/documents
func (c *DocumentController) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := c.docs.List(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// DELETE /api/v1/documents/{id}
func (c *DocumentController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.docs.Delete(r.Context(), actor, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
