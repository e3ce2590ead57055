package controllers

import (
	"net/http"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type RequestController struct {
	requests *services.RequestService
}

func NewRequestController(requests *services.RequestService) *RequestController {
	return &RequestController{requests: requests}
}

// POST /api/v1/requests
func (c *RequestController) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.CreateServiceRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sr, err := c.requests.CreateRequest(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.ServiceRequestResponse{
		Request: sr,
		Message: "Service request sent",
	})
}

// GET /api/v1/requests?task_id=
func (c *RequestController) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	taskID, ok := queryID(w, r, "task_id")
	if !ok {
		return
	}
	list, err := c.requests.ListRequests(r.Context(), actor, taskID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/requests/{id}
func (c *RequestController) GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sr, err := c.requests.GetRequest(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sr)
}

// PATCH /api/v1/requests/{id}
func (c *RequestController) UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateServiceRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sr, err := c.requests.UpdateRequest(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sr)
}

// POST /api/v1/requests/{id}/transition
func (c *RequestController) TransitionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.TransitionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sr, err := c.requests.TransitionRequest(r.Context(), actor, id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ServiceRequestResponse{
		Request: sr,
		Message: transitionMessage(sr.Status),
	})
}

func transitionMessage(s models.RequestStatusType) string {
	switch s {
	case models.RequestStatusAccepted:
		return "Service request accepted"
	case models.RequestStatusRefused:
		return "Service request refused"
	case models.RequestStatusInProgress:
		return "Work started"
	case models.RequestStatusCompleted:
		return "Service request completed"
	default:
		return "Service request updated"
	}
}

// POST /api/v1/requests/{id}/comments
func (c *RequestController) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.AddCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	comment, err := c.requests.AddComment(r.Context(), actor, id, req.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, comment)
}

// POST /api/v1/requests/{id}/documents (multipart, field "file")
func (c *RequestController) AttachDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	file, header, ok := formFile(w, r, "file")
	if !ok {
		return
	}
	defer file.Close()

	doc, err := c.requests.AttachDocument(r.Context(), actor, id, header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, doc)
}

// GET /api/v1/provider/dashboard
func (c *RequestController) ProviderDashboardHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	dash, err := c.requests.ProviderDashboard(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dash)
}

// POST /api/v1/requests/draft-email
func (c *RequestController) DraftEmailHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.DraftEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	draft, err := c.requests.DraftEmail(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, draft)
}
