package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/auth"
	"github.com/vaughan-dsouza/cloudportal/internal/metrics"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type AuthHandler struct {
	svc     *auth.Service
	users   store.UserRepository
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewAuthHandler(svc *auth.Service, users store.UserRepository, m *metrics.Metrics, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{svc: svc, users: users, metrics: m, log: log}
}

// ----------- Request DTOs -------------

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.observe(err)
		writeError(w, r, h.log, err)
		return
	}
	h.observe(nil)

	h.log.WithFields(logrus.Fields{"user_id": res.User.ID, "role": res.User.Role}).Info("login succeeded")
	utils.OK(w, http.StatusOK, res)
}

func (h *AuthHandler) observe(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.metrics.ObserveLogin(metrics.LoginSuccess)
	case errors.Is(err, utils.ErrUnauthorized), errors.Is(err, utils.ErrValidation):
		h.metrics.ObserveLogin(metrics.LoginFailure)
	default:
		h.metrics.ObserveLogin(metrics.LoginError)
	}
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := caller(r, h.users)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusOK, u)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, err := caller(r, h.users)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req changePasswordReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.WithField("user_id", u.ID).Info("password changed")
	utils.OK(w, http.StatusOK, map[string]string{"message": "password updated"})
}
