package controllers

import (
	"net/http"
	"strings"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type TaskController struct {
	tasks *services.TaskService
}

func NewTaskController(tasks *services.TaskService) *TaskController {
	return &TaskController{tasks: tasks}
}

// POST /api/v1/tasks
func (c *TaskController) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := c.tasks.CreateTask(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/tasks?building_id=&master_id=&status=
func (c *TaskController) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var f services.TaskFilter
	if f.BuildingID, ok = queryID(w, r, "building_id"); !ok {
		return
	}
	if f.MasterID, ok = queryID(w, r, "master_id"); !ok {
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := models.TaskStatusType(strings.ToUpper(raw))
		if !status.Valid() {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid status", nil, nil)
			return
		}
		f.Status = &status
	}

	tasks, err := c.tasks.ListTasks(r.Context(), actor, f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tasks)
}

// GET /api/v1/tasks/{id}
func (c *TaskController) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := c.tasks.GetTask(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// PATCH /api/v1/tasks/{id}
func (c *TaskController) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := c.tasks.UpdateTask(r.Context(), actor, id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// PUT /api/v1/tasks/{id}/status
func (c *TaskController) SetTaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dtos.SetTaskStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := c.tasks.SetTaskStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// GET /api/v1/tasks/{id}/checklist
func (c *TaskController) ChecklistHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resp, err := c.tasks.Checklist(r.Context(), actor, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
