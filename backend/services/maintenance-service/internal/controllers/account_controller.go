package controllers

import (
	"errors"
	"net/http"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type AccountController struct {
	accounts *services.AccountService
	limiter  services.LoginRateLimiter
}

func NewAccountController(accounts *services.AccountService, limiter services.LoginRateLimiter) *AccountController {
	return &AccountController{accounts: accounts, limiter: limiter}
}

// POST /api/v1/auth/login
func (c *AccountController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := c.limiter.CheckLoginRateLimits(r.Context(), utils.ClientIP(r), req.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	resp, err := c.accounts.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password", nil, err)
			return
		}
		respondServiceError(w, err)
		return
	}
	if err := c.limiter.ResetLogin(r.Context(), req.Email); err != nil {
		utils.Logger.WithError(err).Warn("Failed to reset login rate limit counter")
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/auth/me
func (c *AccountController) MeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	user, err := c.accounts.Me(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// POST /api/v1/users
func (c *AccountController) ProvisionUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.ProvisionUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := c.accounts.ProvisionUser(r.Context(), actor, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/users
func (c *AccountController) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	users, err := c.accounts.ListUsers(r.Context(), actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}
