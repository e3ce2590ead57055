package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

const (
	// Cookie names follow the __Host- prefix rule (no Domain attribute allowed)
	AccessTokenCookieName = "__Host-accessToken"
)

// AuthMiddleware – for protected endpoints. If the token is missing or
// invalid, returns 401. The token is read from Authorization: Bearer first,
// then from the AccessTokenCookieName cookie.
func AuthMiddleware(pub *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractAccessToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			claims, vErr := ValidateToken(tokenStr, pub)
			if vErr != nil {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr,
				)
				return
			}

			actor, aErr := ActorFromClaims(claims)
			if aErr != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid claims", nil, aErr,
				)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, utils.CtxKeyActor, actor)
}

// ActorFromContext returns the actor placed by AuthMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(utils.CtxKeyActor).(models.Actor)
	return actor, ok
}

func extractAccessToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return "", errors.New("malformed Authorization header")
		}
		return strings.TrimPrefix(h, "Bearer "), nil
	}
	c, err := r.Cookie(AccessTokenCookieName)
	if err != nil || c.Value == "" {
		return "", errors.New("missing access token")
	}
	return c.Value, nil
}
