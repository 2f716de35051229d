package middleware

import (
	"net/http"

	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

// RequireRole lets the request through only when the caller's role is one
// of roles. It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := utils.ClaimsFromContext(r.Context())
			if !ok {
				utils.Fail(w, http.StatusUnauthorized, utils.ErrUnauthorized.Error())
				return
			}

			if _, ok := allowed[claims.Role]; !ok {
				utils.Fail(w, http.StatusForbidden, utils.ErrForbidden.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
