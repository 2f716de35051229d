package handlers

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type QuotaHandler struct {
	quotas store.QuotaRepository
	users  store.UserRepository
	log    logrus.FieldLogger
}

func NewQuotaHandler(quotas store.QuotaRepository, users store.UserRepository, log logrus.FieldLogger) *QuotaHandler {
	return &QuotaHandler{quotas: quotas, users: users, log: log}
}

// ---------------------- MINE ----------------------

// MyQuotas lists the quotas of the caller's account. Callers without an
// account get an empty list.
func (h *QuotaHandler) MyQuotas(w http.ResponseWriter, r *http.Request) {
	u, err := caller(r, h.users)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if !u.HasAccount() {
		utils.OK(w, http.StatusOK, []models.Quota{})
		return
	}

	quotas, err := h.quotas.ListQuotas(r.Context(), *u.AccountID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusOK, quotas)
}

// ---------------------- LIST ----------------------

func (h *QuotaHandler) ListQuotas(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("account_id"))

	quotas, err := h.quotas.ListQuotas(r.Context(), accountID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusOK, quotas)
}

// ---------------------- CREATE ----------------------

func (h *QuotaHandler) CreateQuota(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountID    string `json:"account_id"`
		ResourceType string `json:"resource_type"`
		Limit        int64  `json:"limit"`
		Used         int64  `json:"used"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	q := models.Quota{
		AccountID:    strings.TrimSpace(body.AccountID),
		ResourceType: strings.TrimSpace(body.ResourceType),
		Limit:        body.Limit,
		Used:         body.Used,
	}
	switch {
	case q.AccountID == "":
		writeError(w, r, h.log, utils.Validation("account_id is required"))
		return
	case q.ResourceType == "":
		writeError(w, r, h.log, utils.Validation("resource_type is required"))
		return
	case q.Limit < 0 || q.Used < 0:
		writeError(w, r, h.log, utils.Validation("limit and used must not be negative"))
		return
	}

	if err := h.quotas.CreateQuota(r.Context(), &q); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusCreated, q)
}

// ---------------------- UPDATE ----------------------

func (h *QuotaHandler) UpdateQuota(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var body struct {
		Limit *int64 `json:"limit"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if body.Limit == nil {
		writeError(w, r, h.log, utils.Validation("limit is required"))
		return
	}
	if *body.Limit < 0 {
		writeError(w, r, h.log, utils.Validation("limit must not be negative"))
		return
	}

	q, err := h.quotas.UpdateQuotaLimit(r.Context(), id, *body.Limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.WithFields(logrus.Fields{"quota_id": id, "limit": *body.Limit}).Info("quota updated")
	utils.OK(w, http.StatusOK, q)
}
