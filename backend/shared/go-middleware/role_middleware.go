package middleware

import (
	"net/http"
	"slices"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// RequireRoles must run after AuthMiddleware. It rejects actors whose role
// is not listed with 403.
func RequireRoles(roles ...models.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing actor", nil,
				)
				return
			}
			if !slices.Contains(roles, actor.Role) {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Role not permitted", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
