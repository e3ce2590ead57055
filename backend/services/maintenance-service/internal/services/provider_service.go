package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type ProviderService struct {
	repos    Repositories
	scope    *ScopeService
	contacts *utils.ContactValidator
	audit    *AuditService
	bus      events.ChangePublisher
}

func NewProviderService(repos Repositories, scope *ScopeService, contacts *utils.ContactValidator, audit *AuditService, bus events.ChangePublisher) *ProviderService {
	return &ProviderService{repos: repos, scope: scope, contacts: contacts, audit: audit, bus: bus}
}

func (s *ProviderService) validateContacts(ctx context.Context, email string, phone *string) error {
	ok, err := s.contacts.ValidateEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("validate email: %w", err)
	}
	if !ok {
		return &internal_utils.ValidationError{Field: "email", Message: "email address is not deliverable", Err: utils.ErrInvalidEmail}
	}
	if phone != nil && *phone != "" {
		ok, err := s.contacts.ValidatePhone(ctx, *phone, nil)
		if err != nil {
			return fmt.Errorf("validate phone: %w", err)
		}
		if !ok {
			return &internal_utils.ValidationError{Field: "phone", Message: "phone must be a valid E.164 number", Err: utils.ErrInvalidPhone}
		}
	}
	return nil
}

// checkDuplicateEmail looks only at providers the actor can see.
func (s *ProviderService) checkDuplicateEmail(ctx context.Context, actor models.Actor, email string, self uuid.UUID) error {
	visible, err := s.scope.ScopedProviders(ctx, actor)
	if err != nil {
		return err
	}
	for _, p := range visible {
		if p.ID != self && utils.NormalizeEmail(p.Email) == email {
			return &internal_utils.ConflictError{
				Message:  "A service provider with this email already exists",
				Blocking: []internal_utils.Reference{{Type: "service_provider", ID: p.ID, Name: p.Name}},
			}
		}
	}
	return nil
}

func (s *ProviderService) CreateProvider(ctx context.Context, actor models.Actor, in dtos.CreateProviderRequest) (*models.ServiceProvider, error) {
	if !actor.Role.IsManagement() {
		return nil, internal_utils.NewAuthorizationError("create service providers")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, internal_utils.NewValidationError("name", "provider name is required")
	}
	specialty := strings.TrimSpace(in.Specialty)
	if specialty == "" {
		return nil, internal_utils.NewValidationError("specialty", "specialty is required")
	}
	email := utils.NormalizeEmail(in.Email)
	if err := s.validateContacts(ctx, email, in.Phone); err != nil {
		return nil, err
	}
	if err := s.checkDuplicateEmail(ctx, actor, email, uuid.Nil); err != nil {
		return nil, err
	}

	p := &models.ServiceProvider{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		Specialty:   specialty,
		Phone:       in.Phone,
		ContactName: in.ContactName,
		Address:     in.Address,
		CreatedBy:   actor.ID,
	}
	if err := s.repos.Providers.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityProvider, p.ID, events.OpCreate)
	s.audit.Record(ctx, actor, models.AuditCreate, models.TargetServiceProvider, p.ID, map[string]string{"name": p.Name})
	return p, nil
}

func (s *ProviderService) ListProviders(ctx context.Context, actor models.Actor) ([]*models.ServiceProvider, error) {
	if actor.Role == models.RoleServiceProvider {
		p, err := s.scope.ProviderProfile(ctx, actor)
		if err != nil || p == nil {
			return []*models.ServiceProvider{}, err
		}
		return []*models.ServiceProvider{p}, nil
	}
	return s.scope.ScopedProviders(ctx, actor)
}

func (s *ProviderService) GetProvider(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ServiceProvider, error) {
	list, err := s.ListProviders(ctx, actor)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, internal_utils.NewNotFoundError("service provider", id)
}

// UpdateProvider is open to the provider's creator, Admins and SuperAdmins,
// and to the provider's own login.
func (s *ProviderService) UpdateProvider(ctx context.Context, actor models.Actor, id uuid.UUID, in dtos.UpdateProviderRequest) (*models.ServiceProvider, error) {
	current, err := s.GetProvider(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	self := current.UserID != nil && *current.UserID == actor.ID
	if !self && current.CreatedBy != actor.ID && actor.Role != models.RoleAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, internal_utils.NewAuthorizationError("edit service provider %s", current.Name)
	}

	email := current.Email
	if in.Email != nil {
		email = utils.NormalizeEmail(*in.Email)
	}
	phone := current.Phone
	if in.Phone != nil {
		phone = in.Phone
	}
	if in.Email != nil || in.Phone != nil {
		if err := s.validateContacts(ctx, email, phone); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		if err := s.checkDuplicateEmail(ctx, actor, email, id); err != nil {
			return nil, err
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, internal_utils.NewValidationError("name", "provider name is required")
	}
	if in.Specialty != nil && strings.TrimSpace(*in.Specialty) == "" {
		return nil, internal_utils.NewValidationError("specialty", "specialty is required")
	}

	var updated models.ServiceProvider
	err = s.repos.Providers.UpdateWithRetry(ctx, id, func(p *models.ServiceProvider) error {
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Specialty != nil {
			p.Specialty = strings.TrimSpace(*in.Specialty)
		}
		p.Email = email
		p.Phone = phone
		if in.ContactName != nil {
			p.ContactName = in.ContactName
		}
		if in.Address != nil {
			p.Address = in.Address
		}
		updated = *p
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, internal_utils.NewNotFoundError("service provider", id)
		}
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityProvider, id, events.OpUpdate)
	return &updated, nil
}
