package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/auth"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware requires "Authorization: Bearer <token>". Every failure
// answers 401 "unauthorized"; the reason only goes to the log.
func AuthMiddleware(tokens TokenVerifier, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string) {
				log.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"reason": reason,
				}).Info("request rejected by auth guard")
				utils.Fail(w, http.StatusUnauthorized, utils.ErrUnauthorized.Error())
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				reject("missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				reject("malformed authorization header")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				reject("empty bearer token")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				reject(err.Error())
				return
			}

			// push claims into context
			ctx := utils.WithClaims(r.Context(), utils.RequestClaims{
				UserID: claims.UserID,
				Role:   claims.Role,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
