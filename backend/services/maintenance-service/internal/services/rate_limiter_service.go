package services

import (
	"context"
	"fmt"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/constants"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// LoginRateLimiter throttles password attempts per client IP and per account.
type LoginRateLimiter interface {
	CheckLoginRateLimits(ctx context.Context, ip, email string) error
	ResetLogin(ctx context.Context, email string) error
	CleanupExpired(ctx context.Context) error
}

type loginRateLimiter struct {
	repo repositories.RateLimitRepository
}

func NewLoginRateLimiter(repo repositories.RateLimitRepository) LoginRateLimiter {
	return &loginRateLimiter{repo: repo}
}

func loginEmailKey(email string) string {
	return fmt.Sprintf("login:email:%s", utils.NormalizeEmail(email))
}

// CheckLoginRateLimits counts one attempt against both keys.
func (s *loginRateLimiter) CheckLoginRateLimits(ctx context.Context, ip, email string) error {
	ipKey := fmt.Sprintf("login:ip:%s", ip)
	allowed, err := s.repo.IncrementAndCheck(ctx, ipKey, constants.LoginLimitPerIP, constants.LoginRateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-IP login rate limit exceeded (key: %s)", ipKey)
		return utils.ErrRateLimitExceeded
	}

	emailKey := loginEmailKey(email)
	allowed, err = s.repo.IncrementAndCheck(ctx, emailKey, constants.LoginLimitPerEmail, constants.LoginRateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-email login rate limit exceeded (key: %s)", emailKey)
		return utils.ErrRateLimitExceeded
	}
	return nil
}

// ResetLogin clears the per-account counter after a successful login.
// The per-IP counter keeps running.
func (s *loginRateLimiter) ResetLogin(ctx context.Context, email string) error {
	return s.repo.Reset(ctx, loginEmailKey(email))
}

func (s *loginRateLimiter) CleanupExpired(ctx context.Context) error {
	n, err := s.repo.CleanupExpired(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired rate_limit_attempts")
		return err
	}
	utils.Logger.WithField("removed", n).Info("Rate limit counter cleanup completed")
	return nil
}
