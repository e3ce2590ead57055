package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
)

// GetRequest returns a request the actor may see.
func (s *RequestService) GetRequest(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRequest(ctx, actor, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListRequests returns the requests visible to actor, optionally narrowed to
// one task.
func (s *RequestService) ListRequests(ctx context.Context, actor models.Actor, taskID *uuid.UUID) ([]*models.ServiceRequest, error) {
	snap, err := s.scope.SnapshotFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if taskID == nil {
		return snap.Requests, nil
	}
	return filter(snap.Requests, func(r *models.ServiceRequest) bool { return r.TaskID == *taskID }), nil
}

// UpdateRequest edits the mutable fields of a request that is still open.
// The provider can only change while the request is Sent, and the new one
// must match the request's specialty.
func (s *RequestService) UpdateRequest(ctx context.Context, actor models.Actor, id uuid.UUID, in dtos.UpdateServiceRequestRequest) (*models.ServiceRequest, error) {
	if !actor.Role.IsManagement() {
		return nil, internal_utils.NewAuthorizationError("edit service requests")
	}
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRequest(ctx, actor, req); err != nil {
		return nil, err
	}

	var newProvider *models.ServiceProvider
	if in.ProviderID != nil && *in.ProviderID != req.ProviderID {
		if newProvider, err = s.requireAssignableProvider(ctx, actor, *in.ProviderID); err != nil {
			return nil, err
		}
		task, err := s.repos.Tasks.GetByID(ctx, req.TaskID)
		if err != nil {
			return nil, err
		}
		if task == nil {
			// stale task: only the provider can vouch for the specialty
			task = &models.MaintenanceTask{}
		}
		if !specialtyMatches(req.Specialty, task, newProvider) {
			return nil, &internal_utils.ValidationError{
				Field:   "provider_id",
				Message: fmt.Sprintf("provider specialty %s does not match %s", newProvider.Specialty, req.Specialty),
				Err:     internal_utils.ErrSpecialtyMismatch,
			}
		}
	}

	var updated models.ServiceRequest
	err = s.repos.Requests.UpdateWithRetry(ctx, id, func(r *models.ServiceRequest) error {
		if r.Status.IsTerminal() {
			return fmt.Errorf("%w: request is %s", internal_utils.ErrTerminalRequest, r.Status)
		}
		if newProvider != nil {
			if r.Status != models.RequestStatusSent {
				return fmt.Errorf("%w: cannot reassign a %s request", internal_utils.ErrInvalidTransition, r.Status)
			}
			r.ProviderID = newProvider.ID
		}
		if in.Notes != nil {
			r.Notes = clonePtr(in.Notes)
		}
		if in.ScheduledDate != nil {
			r.ScheduledDate = clonePtr(in.ScheduledDate)
		}
		if in.Cost != nil {
			r.Cost = clonePtr(in.Cost)
		}
		if in.IsUrgent != nil {
			r.IsUrgent = *in.IsUrgent
		}
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

	if newProvider != nil {
		if err := s.applyTaskStatus(ctx, updated.TaskID, models.TaskStatusSent, &newProvider.ID, id); err != nil {
			return nil, err
		}
		if newProvider.UserID != nil {
			s.notifier.Notify(ctx, *newProvider.UserID, "New service request",
				fmt.Sprintf("%s assigned you a service request", actor.DisplayName),
				&models.NotificationLink{View: LinkViewServiceRequest, EntityID: id})
		}
	}
	return &updated, nil
}

// AddComment appends to the request's comment thread.
func (s *RequestService) AddComment(ctx context.Context, actor models.Actor, id uuid.UUID, body string) (*models.RequestComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, internal_utils.NewValidationError("body", "comment is empty")
	}
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRequest(ctx, actor, req); err != nil {
		return nil, err
	}
	c := models.RequestComment{
		ID:         uuid.New(),
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName,
		Body:       body,
		CreatedAt:  s.Now(),
	}
	if err := s.repos.Requests.AppendComment(ctx, id, c); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, internal_utils.NewNotFoundError("service request", id)
		}
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityRequest, id, events.OpUpdate)
	return &c, nil
}

// AttachDocument stores the file and appends its URL to the request.
func (s *RequestService) AttachDocument(ctx context.Context, actor models.Actor, id uuid.UUID, filename string, r io.Reader) (*models.RequestDocument, error) {
	req, err := s.loadRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRequest(ctx, actor, req); err != nil {
		return nil, err
	}
	url, err := s.blobs.Put(ctx, req.ID, filename, r)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	doc := models.RequestDocument{
		Name:       filename,
		URL:        url,
		UploadedBy: actor.DisplayName,
		UploadedAt: s.Now(),
	}
	if err := s.repos.Requests.AppendDocument(ctx, id, doc); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityRequest, id, events.OpUpdate)
	return &doc, nil
}

// ProviderDashboard is the service provider's own view.
func (s *RequestService) ProviderDashboard(ctx context.Context, actor models.Actor) (*dtos.ProviderDashboard, error) {
	if actor.Role != models.RoleServiceProvider {
		return nil, internal_utils.NewAuthorizationError("open the provider dashboard")
	}
	snap, err := s.scope.SnapshotFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := &dtos.ProviderDashboard{
		Requests:  snap.Requests,
		Tasks:     snap.Tasks,
		Buildings: snap.Buildings,
	}
	if len(snap.Providers) > 0 {
		out.Provider = snap.Providers[0]
	}
	return out, nil
}

// DraftEmail proposes the email a manager would send with a new request.
func (s *RequestService) DraftEmail(ctx context.Context, actor models.Actor, in dtos.DraftEmailRequest) (*dtos.DraftEmailResponse, error) {
	task, err := s.scope.RequireTask(ctx, actor, in.TaskID)
	if err != nil {
		return nil, err
	}
	provider, err := s.requireAssignableProvider(ctx, actor, in.ProviderID)
	if err != nil {
		return nil, err
	}
	building, err := s.repos.Buildings.GetByID(ctx, task.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, internal_utils.NewNotFoundError("building", task.BuildingID)
	}
	d := s.openai.DraftRequestEmail(ctx, RequestDraftInput{
		Task:       task,
		Building:   building,
		Provider:   provider,
		SenderName: actor.DisplayName,
		IsUrgent:   in.IsUrgent,
		Notes:      in.Notes,
	})
	return &dtos.DraftEmailResponse{Subject: d.Subject, Body: d.Body, Generated: d.Generated}, nil
}
