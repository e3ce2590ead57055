package services

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	shared_dtos "github.com/lazar0830/sos-condo-sub000/backend/shared/go-dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-middleware"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

const AccessTokenTTL = 12 * time.Hour

// provisionable lists the roles each role may create.
var provisionable = map[models.RoleType][]models.RoleType{
	models.RoleSuperAdmin:      {models.RoleAdmin, models.RoleServiceProvider},
	models.RoleAdmin:           {models.RolePropertyManager, models.RoleServiceProvider},
	models.RolePropertyManager: {models.RoleServiceProvider},
}

func canProvision(actor, target models.RoleType) bool {
	for _, r := range provisionable[actor] {
		if r == target {
			return true
		}
	}
	return false
}

// ErrBadCredentials is returned for any failed login.
var ErrBadCredentials = errors.New("invalid email or password")

type AccountService struct {
	repos      Repositories
	scope      *ScopeService
	privateKey *rsa.PrivateKey
	audit      *AuditService
	bus        events.ChangePublisher
}

func NewAccountService(repos Repositories, scope *ScopeService, privateKey *rsa.PrivateKey, audit *AuditService, bus events.ChangePublisher) *AccountService {
	return &AccountService{repos: repos, scope: scope, privateKey: privateKey, audit: audit, bus: bus}
}

const msgEmailInUse = "An account with this email already exists"

/*
ProvisionUser creates a login on behalf of actor, who becomes its
createdBy. Email uniqueness is checked against the accounts the actor
manages first. A hit outside scope gets the same message without naming
the blocking account.

A ServiceProvider login may be linked to an existing provider profile.
*/
func (s *AccountService) ProvisionUser(ctx context.Context, actor models.Actor, in dtos.ProvisionUserRequest) (*dtos.ProvisionUserResponse, error) {
	if !canProvision(actor.Role, in.Role) {
		return nil, internal_utils.NewAuthorizationError("create %s accounts", strings.ToLower(string(in.Role)))
	}
	email := utils.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, internal_utils.NewValidationError("username", "username is required")
	}

	scoped, err := s.scope.ScopedUsers(ctx, actor)
	if err != nil {
		return nil, err
	}
	for _, u := range scoped {
		if utils.NormalizeEmail(u.Email) == email {
			return nil, &internal_utils.ConflictError{
				Message:  msgEmailInUse,
				Blocking: []internal_utils.Reference{{Type: "user", ID: u.ID, Name: u.Username}},
			}
		}
	}
	existing, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// logins are unique across the system; only the blocking account stays hidden
		return nil, &internal_utils.ConflictError{Message: msgEmailInUse}
	}
	if existing, err = s.repos.Users.GetByUsername(ctx, username); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &internal_utils.ConflictError{Message: "This username is taken"}
	}

	var provider *models.ServiceProvider
	if in.ProviderID != nil {
		if in.Role != models.RoleServiceProvider {
			return nil, internal_utils.NewValidationError("provider_id", "only service provider accounts link to a provider")
		}
		visible, err := s.scope.ScopedProviders(ctx, actor)
		if err != nil {
			return nil, err
		}
		for _, p := range visible {
			if p.ID == *in.ProviderID {
				provider = p
			}
		}
		if provider == nil {
			return nil, internal_utils.NewNotFoundError("service provider", *in.ProviderID)
		}
		if provider.UserID != nil {
			return nil, &internal_utils.ConflictError{Message: "This provider already has a login"}
		}
	}

	resp := &dtos.ProvisionUserResponse{}
	password := utils.Val(in.Password)
	if password == "" {
		password = utils.TempPassword(14)
		resp.TemporaryPassword = password
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, &internal_utils.ValidationError{Field: "password", Message: err.Error(), Err: utils.ErrInvalidPassword}
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	createdBy := actor.ID
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		Role:         in.Role,
		PasswordHash: hash,
		CreatedBy:    &createdBy,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityUser, user.ID, events.OpCreate)

	if provider != nil {
		userID := user.ID
		if err := s.repos.Providers.UpdateWithRetry(ctx, provider.ID, func(p *models.ServiceProvider) error {
			p.UserID = &userID
			return nil
		}); err != nil {
			return nil, fmt.Errorf("link provider login: %w", err)
		}
		events.Emit(ctx, s.bus, events.EntityProvider, provider.ID, events.OpUpdate)
	}

	s.audit.Record(ctx, actor, models.AuditCreate, models.TargetUser, user.ID, map[string]string{
		"email": user.Email,
		"role":  string(user.Role),
	})
	dto := shared_dtos.NewUserFromModel(*user)
	resp.User = &dto
	return resp, nil
}

// ListUsers returns the accounts actor manages.
func (s *AccountService) ListUsers(ctx context.Context, actor models.Actor) ([]shared_dtos.User, error) {
	users, err := s.scope.ScopedUsers(ctx, actor)
	if err != nil {
		return nil, err
	}
	return shared_dtos.NewUsersFromModels(users), nil
}

// Login checks credentials and issues an access token.
func (s *AccountService) Login(ctx context.Context, in dtos.LoginRequest) (*dtos.LoginResponse, error) {
	user, err := s.repos.Users.GetByEmail(ctx, utils.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}
	token, err := middleware.IssueToken(s.privateKey, user.AsActor(), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	dto := shared_dtos.NewUserFromModel(*user)
	return &dtos.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(AccessTokenTTL.Seconds()),
		User:        &dto,
	}, nil
}

// Me resolves the current account.
func (s *AccountService) Me(ctx context.Context, actor models.Actor) (*shared_dtos.User, error) {
	u, err := s.repos.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal_utils.NewNotFoundError("user", actor.ID)
	}
	dto := shared_dtos.NewUserFromModel(*u)
	return &dto, nil
}
