package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/auth"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type UserHandler struct {
	svc   *auth.Service
	users store.UserRepository
	log   logrus.FieldLogger
}

func NewUserHandler(svc *auth.Service, users store.UserRepository, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{svc: svc, users: users, log: log}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusOK, u)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.NewUser
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	utils.OK(w, http.StatusCreated, u)
}
