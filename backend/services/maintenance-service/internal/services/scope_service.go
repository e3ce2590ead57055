package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
)

// Repositories groups the persistence collaborators shared by the services.
type Repositories struct {
	Buildings     repositories.BuildingRepository
	Units         repositories.UnitRepository
	Components    repositories.ComponentRepository
	Tasks         repositories.MaintenanceTaskRepository
	Requests      repositories.ServiceRequestRepository
	Providers     repositories.ServiceProviderRepository
	Expenses      repositories.ExpenseRepository
	Users         repositories.UserRepository
	Notifications repositories.NotificationRepository
	Documents     repositories.ContingencyDocumentRepository
	AuditLogs     repositories.AuditLogRepository
}

// ScopeService loads current state and applies the visibility rules to it.
// Nothing is cached; every call reads fresh.
type ScopeService struct {
	repos Repositories
}

func NewScopeService(repos Repositories) *ScopeService {
	return &ScopeService{repos: repos}
}

// Load reads the whole data graph.
func (s *ScopeService) Load(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Buildings, err = s.repos.Buildings.List(ctx); err != nil {
		return snap, fmt.Errorf("list buildings: %w", err)
	}
	if snap.Units, err = s.repos.Units.List(ctx); err != nil {
		return snap, fmt.Errorf("list units: %w", err)
	}
	if snap.Components, err = s.repos.Components.List(ctx); err != nil {
		return snap, fmt.Errorf("list components: %w", err)
	}
	if snap.Tasks, err = s.repos.Tasks.List(ctx); err != nil {
		return snap, fmt.Errorf("list tasks: %w", err)
	}
	if snap.Requests, err = s.repos.Requests.List(ctx); err != nil {
		return snap, fmt.Errorf("list requests: %w", err)
	}
	if snap.Providers, err = s.repos.Providers.List(ctx); err != nil {
		return snap, fmt.Errorf("list providers: %w", err)
	}
	if snap.Expenses, err = s.repos.Expenses.List(ctx); err != nil {
		return snap, fmt.Errorf("list expenses: %w", err)
	}
	if snap.Users, err = s.repos.Users.List(ctx); err != nil {
		return snap, fmt.Errorf("list users: %w", err)
	}
	if snap.Documents, err = s.repos.Documents.List(ctx); err != nil {
		return snap, fmt.Errorf("list documents: %w", err)
	}
	return snap, nil
}

// SnapshotFor returns what actor may see right now.
func (s *ScopeService) SnapshotFor(ctx context.Context, actor models.Actor) (Snapshot, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.Notifications, err = s.repos.Notifications.ListByUserID(ctx, actor.ID); err != nil {
		return Snapshot{}, fmt.Errorf("list notifications: %w", err)
	}
	if actor.Role == models.RoleServiceProvider {
		profile, err := s.repos.Providers.GetByUserID(ctx, actor.ID)
		if err != nil {
			return Snapshot{}, err
		}
		return ProviderView(actor, profile, snap), nil
	}
	return Scope(actor, snap), nil
}

func (s *ScopeService) VisibleBuildings(ctx context.Context, actor models.Actor) (BuildingSet, []*models.Building, error) {
	buildings, err := s.repos.Buildings.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	set := VisibleBuildingIDs(actor, buildings, users)
	return set, filter(buildings, func(b *models.Building) bool { return set.Has(b.ID) }), nil
}

// RequireBuilding resolves a building the actor manages. A building outside
// scope is reported exactly like a missing one.
func (s *ScopeService) RequireBuilding(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Building, error) {
	if !actor.Role.IsManagement() {
		return nil, internal_utils.NewAuthorizationError("manage buildings")
	}
	b, err := s.repos.Buildings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, internal_utils.NewNotFoundError("building", id)
	}
	set, _, err := s.VisibleBuildings(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !set.Has(id) {
		return nil, internal_utils.NewNotFoundError("building", id)
	}
	return b, nil
}

// RequireTask resolves a task whose building the actor manages.
func (s *ScopeService) RequireTask(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.MaintenanceTask, error) {
	t, err := s.repos.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, internal_utils.NewNotFoundError("task", id)
	}
	if _, err := s.RequireBuilding(ctx, actor, t.BuildingID); err != nil {
		return nil, hideAs(err, "task", id)
	}
	return t, nil
}

// hideAs renames a NotFoundError after the record the caller asked for, so
// the message never names a parent outside scope.
func hideAs(err error, entity string, id uuid.UUID) error {
	var nf *internal_utils.NotFoundError
	if errors.As(err, &nf) {
		return internal_utils.NewNotFoundError(entity, id)
	}
	return err
}

// ProviderVisible reports whether the actor's provider scope includes id.
func (s *ScopeService) ProviderVisible(ctx context.Context, actor models.Actor, id uuid.UUID) (bool, error) {
	visible, err := s.ScopedProviders(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, v := range visible {
		if v.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// ScopedProviders returns the providers the actor may see or assign.
func (s *ScopeService) ScopedProviders(ctx context.Context, actor models.Actor) ([]*models.ServiceProvider, error) {
	providers, err := s.repos.Providers.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return scopeProviders(actor, providers, users), nil
}

// ScopedUsers returns the accounts the actor manages, itself included.
func (s *ScopeService) ScopedUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return scopeUsers(actor, users), nil
}

// ProviderProfile returns the provider record linked to a ServiceProvider
// login, or nil.
func (s *ScopeService) ProviderProfile(ctx context.Context, actor models.Actor) (*models.ServiceProvider, error) {
	if actor.Role != models.RoleServiceProvider {
		return nil, nil
	}
	return s.repos.Providers.GetByUserID(ctx, actor.ID)
}
