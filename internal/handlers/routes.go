package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/vaughan-dsouza/cloudportal/internal/middleware"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

// Routes builds the full HTTP surface of the portal.
func (h *Handler) Routes() http.Handler {
	d := h.deps

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(d.TrustedProxies))
	r.Use(middleware.RequestLogger(d.Log, d.Metrics))
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Operational
	r.Get("/healthz", h.Health.Liveness)
	r.Get("/readyz", h.Health.Readiness)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(middleware.LoginRateLimit(d.Limiter, d.Metrics, d.Log))
			}
			r.Post("/login", h.Auth.Login)
		})

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.Tokens, d.Log))

			r.Get("/me", h.Auth.Me)
			r.Put("/me/password", h.Auth.ChangePassword)

			r.Get("/quotas/my-quotas", h.Quotas.MyQuotas)
			r.Get("/hierarchy", h.Hierarchy.GetHierarchy)
			r.Get("/hierarchy/{id}", h.Hierarchy.GetNode)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Get("/users", h.Users.ListUsers)
				r.Post("/users", h.Users.CreateUser)
				r.Get("/users/{id}", h.Users.GetUser)

				r.Get("/quotas", h.Quotas.ListQuotas)
				r.Post("/quotas", h.Quotas.CreateQuota)
				r.Put("/quotas/{id}", h.Quotas.UpdateQuota)

				r.Post("/hierarchy", h.Hierarchy.CreateNode)
			})

			r.Route("/global/cloudstack", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSubprovider))

				r.Get("/virtual-machines", h.CloudStack.VirtualMachines)
				r.Get("/volumes", h.CloudStack.Volumes)
				r.Get("/accounts", h.CloudStack.Accounts)
				r.Get("/zones", h.CloudStack.Zones)
			})
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}
