package handlers

import (
	"errors"
	"net/http"
	"net/netip"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/auth"
	"github.com/vaughan-dsouza/cloudportal/internal/cloudstack"
	"github.com/vaughan-dsouza/cloudportal/internal/metrics"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/ratelimit"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

// Deps is everything the HTTP layer needs. Limiter and Metrics may be nil.
// Forwarding headers are honoured only from TrustedProxies.
type Deps struct {
	Auth           *auth.Service
	Tokens         *auth.TokenManager
	Users          store.UserRepository
	Quotas         store.QuotaRepository
	Hierarchy      store.HierarchyRepository
	CloudStack     cloudstack.Client
	Checks         map[string]Pinger
	Metrics        *metrics.Metrics
	Limiter        ratelimit.Limiter
	CORSOrigins    []string
	TrustedProxies []netip.Prefix
	Log            logrus.FieldLogger
}

type Handler struct {
	deps       Deps
	Auth       *AuthHandler
	Users      *UserHandler
	Quotas     *QuotaHandler
	Hierarchy  *HierarchyHandler
	CloudStack *CloudStackHandler
	Health     *HealthHandler
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		deps:       d,
		Auth:       NewAuthHandler(d.Auth, d.Users, d.Metrics, d.Log),
		Users:      NewUserHandler(d.Auth, d.Users, d.Log),
		Quotas:     NewQuotaHandler(d.Quotas, d.Users, d.Log),
		Hierarchy:  NewHierarchyHandler(d.Hierarchy, d.Users, d.Log),
		CloudStack: NewCloudStackHandler(d.CloudStack, d.Log),
		Health:     NewHealthHandler(d.Checks),
	}
}

// writeError logs failures outside the client-facing taxonomy before the
// generic response goes out.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status, _ := utils.StatusAndMessage(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	utils.WriteError(w, err)
}

func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.Validation("invalid " + name)
	}
	return id, nil
}

func callerClaims(r *http.Request) (utils.RequestClaims, error) {
	c, ok := utils.ClaimsFromContext(r.Context())
	if !ok {
		return c, utils.ErrUnauthorized
	}
	return c, nil
}

// caller loads the authenticated user's row. A token for a user that no
// longer exists is treated as unauthorized.
func caller(r *http.Request, users store.UserRepository) (*models.User, error) {
	c, err := callerClaims(r)
	if err != nil {
		return nil, err
	}
	u, err := users.FindUserByID(r.Context(), c.UserID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.ErrUnauthorized
	}
	return u, err
}
