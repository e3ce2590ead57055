package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/storage"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// allowedTransitions is the service request state machine. Refused and
// Completed have no way out.
var allowedTransitions = map[models.RequestStatusType][]models.RequestStatusType{
	models.RequestStatusSent:       {models.RequestStatusAccepted, models.RequestStatusRefused},
	models.RequestStatusAccepted:   {models.RequestStatusInProgress, models.RequestStatusCompleted},
	models.RequestStatusInProgress: {models.RequestStatusCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to models.RequestStatusType) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TaskStatusForRequest is the task status a request status implies. The
// second result is false when the task should be left alone.
func TaskStatusForRequest(s models.RequestStatusType) (models.TaskStatusType, bool) {
	switch s {
	case models.RequestStatusAccepted:
		return models.TaskStatusOnHold, true
	case models.RequestStatusRefused:
		return models.TaskStatusNew, true
	case models.RequestStatusCompleted:
		return models.TaskStatusCompleted, true
	}
	return "", false
}

var errNoChange = errors.New("no change")

/*
RequestService coordinates service requests with their maintenance tasks.
Every status change on a request appends exactly one history entry and then
brings the task's status in line; the task is written only when its status
actually differs.
*/
type RequestService struct {
	repos    Repositories
	scope    *ScopeService
	notifier *NotificationService
	outreach *OutreachService
	openai   *OpenAIService
	blobs    storage.BlobStore
	audit    *AuditService
	bus      events.ChangePublisher

	// Now stamps history entries. Tests may replace it.
	Now func() time.Time
}

func NewRequestService(
	repos Repositories,
	scope *ScopeService,
	notifier *NotificationService,
	outreach *OutreachService,
	openai *OpenAIService,
	blobs storage.BlobStore,
	audit *AuditService,
	bus events.ChangePublisher,
) *RequestService {
	return &RequestService{
		repos:    repos,
		scope:    scope,
		notifier: notifier,
		outreach: outreach,
		openai:   openai,
		blobs:    blobs,
		audit:    audit,
		bus:      bus,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *RequestService) requireAssignableProvider(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ServiceProvider, error) {
	p, err := s.repos.Providers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, internal_utils.NewNotFoundError("service provider", id)
	}
	visible, err := s.scope.ProviderVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, internal_utils.NewNotFoundError("service provider", id)
	}
	return p, nil
}

func specialtyMatches(specialty string, task *models.MaintenanceTask, provider *models.ServiceProvider) bool {
	return strings.EqualFold(specialty, task.Specialty) || strings.EqualFold(specialty, provider.Specialty)
}

// CreateRequest outsources a task to a provider. The request starts Sent
// with a one-entry history, and the task moves to Sent.
func (s *RequestService) CreateRequest(ctx context.Context, actor models.Actor, in dtos.CreateServiceRequestRequest) (*models.ServiceRequest, error) {
	task, err := s.scope.RequireTask(ctx, actor, in.TaskID)
	if err != nil {
		return nil, err
	}
	provider, err := s.requireAssignableProvider(ctx, actor, in.ProviderID)
	if err != nil {
		return nil, err
	}

	specialty := strings.TrimSpace(in.Specialty)
	if specialty == "" {
		specialty = task.Specialty
	}
	if !specialtyMatches(specialty, task, provider) {
		return nil, &internal_utils.ValidationError{
			Field:   "specialty",
			Message: fmt.Sprintf("%q matches neither the task (%s) nor the provider (%s)", specialty, task.Specialty, provider.Specialty),
			Err:     internal_utils.ErrSpecialtyMismatch,
		}
	}

	now := s.Now()
	req := &models.ServiceRequest{
		ID:            uuid.New(),
		TaskID:        task.ID,
		ProviderID:    provider.ID,
		Specialty:     specialty,
		Notes:         in.Notes,
		Status:        models.RequestStatusSent,
		ScheduledDate: in.ScheduledDate,
		Cost:          in.Cost,
		IsUrgent:      in.IsUrgent,
		StatusHistory: []models.StatusChange{{
			Status:    models.RequestStatusSent,
			ChangedAt: now,
			ChangedBy: actor.DisplayName,
		}},
		Comments:  []models.RequestComment{},
		Documents: []models.RequestDocument{},
		CreatedBy: actor.ID,
	}
	if err := s.repos.Requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityRequest, req.ID, events.OpCreate)

	if err := s.applyTaskStatus(ctx, task.ID, models.TaskStatusSent, &provider.ID, req.ID); err != nil {
		return nil, err
	}

	if provider.UserID != nil {
		s.notifier.Notify(ctx, *provider.UserID,
			"New service request",
			fmt.Sprintf("%s sent you a request for \"%s\"", actor.DisplayName, task.Name),
			&models.NotificationLink{View: LinkViewServiceRequest, EntityID: req.ID})
	}
	if s.outreach != nil {
		building, _ := s.repos.Buildings.GetByID(ctx, task.BuildingID)
		if building != nil {
			draft := s.openai.DraftRequestEmail(ctx, RequestDraftInput{
				Task:       task,
				Building:   building,
				Provider:   provider,
				SenderName: actor.DisplayName,
				IsUrgent:   req.IsUrgent,
				Notes:      req.Notes,
			})
			s.outreach.NotifyProviderOfRequest(ctx, provider, req, draft)
		}
	}
	return req, nil
}

// authorizeRequest lets managers act on requests of their buildings and
// providers act on requests addressed to them. Anything else reads as a
// missing request.
func (s *RequestService) authorizeRequest(ctx context.Context, actor models.Actor, req *models.ServiceRequest) error {
	if actor.Role == models.RoleServiceProvider {
		profile, err := s.scope.ProviderProfile(ctx, actor)
		if err != nil {
			return err
		}
		if profile == nil || profile.ID != req.ProviderID {
			return internal_utils.NewNotFoundError("service request", req.ID)
		}
		return nil
	}
	task, err := s.repos.Tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		if actor.IsSuperAdmin() {
			return nil
		}
		return internal_utils.NewNotFoundError("service request", req.ID)
	}
	_, err = s.scope.RequireBuilding(ctx, actor, task.BuildingID)
	return hideAs(err, "service request", req.ID)
}

func (s *RequestService) loadRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.repos.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, internal_utils.NewNotFoundError("service request", id)
	}
	return req, nil
}

// TransitionRequest moves a request to a new status, appends the history
// entry and syncs the task. It returns the updated request.
func (s *RequestService) TransitionRequest(
	ctx context.Context,
	actor models.Actor,
	id uuid.UUID,
	to models.RequestStatusType,
) (*models.ServiceRequest, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRequest(ctx, actor, req); err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", internal_utils.ErrInvalidTransition, req.Status, to)
	}

	var updated models.ServiceRequest
	err = s.repos.Requests.UpdateWithRetry(ctx, id, func(r *models.ServiceRequest) error {
		if !CanTransition(r.Status, to) {
			return fmt.Errorf("%w: %s -> %s", internal_utils.ErrInvalidTransition, r.Status, to)
		}
		r.Status = to
		r.StatusHistory = append(r.StatusHistory, models.StatusChange{
			Status:    to,
			ChangedAt: s.Now(),
			ChangedBy: actor.DisplayName,
		})
		updated = *r
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, internal_utils.NewNotFoundError("service request", id)
		}
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityRequest, id, events.OpUpdate)

	if target, ok := TaskStatusForRequest(to); ok {
		if err := s.applyTaskStatus(ctx, updated.TaskID, target, nil, updated.ID); err != nil {
			return nil, err
		}
	}
	s.notifyOwner(ctx, actor, &updated)
	return &updated, nil
}

/*
applyTaskStatus brings a task to status (and optionally assigns a provider).
No write happens when nothing differs. A missing task is a stale reference:
logged and skipped. Any other load or update failure is returned.
*/
func (s *RequestService) applyTaskStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatusType, providerID *uuid.UUID, requestID uuid.UUID) error {
	log := utils.Logger.WithFields(logrus.Fields{
		"task":    taskID,
		"request": requestID,
		"status":  status,
	})
	stale := func() error {
		ref := &internal_utils.StaleReferenceError{Entity: "task", ID: taskID, From: "service request " + requestID.String()}
		log.WithError(ref).Warn("task status sync skipped")
		return nil
	}

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		log.WithError(err).Error("task status sync: load failed")
		return fmt.Errorf("sync task %s: %w", taskID, err)
	}
	if task == nil {
		return stale()
	}
	if !taskNeedsSync(task, status, providerID) {
		return nil
	}

	err = s.repos.Tasks.UpdateWithRetry(ctx, taskID, func(t *models.MaintenanceTask) error {
		if !taskNeedsSync(t, status, providerID) {
			return errNoChange
		}
		t.Status = status
		if providerID != nil {
			t.ProviderID = clonePtr(providerID)
		}
		return nil
	})
	switch {
	case err == nil:
		events.Emit(ctx, s.bus, events.EntityTask, taskID, events.OpUpdate)
		return nil
	case errors.Is(err, errNoChange):
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return stale()
	default:
		log.WithError(err).Error("task status sync failed")
		return fmt.Errorf("sync task %s: %w", taskID, err)
	}
}

func taskNeedsSync(t *models.MaintenanceTask, status models.TaskStatusType, providerID *uuid.UUID) bool {
	if t.Status != status {
		return true
	}
	return providerID != nil && (t.ProviderID == nil || *t.ProviderID != *providerID)
}

// notifyOwner tells the building's creator that a provider answered.
func (s *RequestService) notifyOwner(ctx context.Context, actor models.Actor, req *models.ServiceRequest) {
	var verb string
	switch req.Status {
	case models.RequestStatusAccepted:
		verb = "accepted"
	case models.RequestStatusRefused:
		verb = "refused"
	case models.RequestStatusCompleted:
		verb = "completed"
	default:
		return
	}
	task, err := s.repos.Tasks.GetByID(ctx, req.TaskID)
	if err != nil || task == nil {
		return
	}
	building, err := s.repos.Buildings.GetByID(ctx, task.BuildingID)
	if err != nil || building == nil || building.CreatedBy == actor.ID {
		return
	}
	s.notifier.Notify(ctx, building.CreatedBy,
		"Service request "+verb,
		fmt.Sprintf("%s %s the request for \"%s\"", actor.DisplayName, verb, task.Name),
		&models.NotificationLink{View: LinkViewServiceRequest, EntityID: req.ID})
}
