package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type HierarchyHandler struct {
	nodes store.HierarchyRepository
	users store.UserRepository
	log   logrus.FieldLogger
}

func NewHierarchyHandler(nodes store.HierarchyRepository, users store.UserRepository, log logrus.FieldLogger) *HierarchyHandler {
	return &HierarchyHandler{nodes: nodes, users: users, log: log}
}

// forest returns every tree plus the part of it the caller may see.
func (h *HierarchyHandler) forest(ctx context.Context, u *models.User) (all, visible []*models.HierarchyNode, err error) {
	nodes, err := h.nodes.ListNodes(ctx)
	if err != nil {
		return nil, nil, err
	}

	all = models.BuildForest(nodes)
	switch {
	case u.Role == models.RoleAdmin:
		visible = all
	case u.HasAccount():
		visible = models.SubtreesForAccount(all, *u.AccountID)
	}
	if visible == nil {
		visible = []*models.HierarchyNode{}
	}
	return all, visible, nil
}

func (h *HierarchyHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	u, err := caller(r, h.users)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	_, visible, err := h.forest(r.Context(), u)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusOK, visible)
}

func (h *HierarchyHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := caller(r, h.users)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	all, visible, err := h.forest(r.Context(), u)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if models.Find(all, id) == nil {
		writeError(w, r, h.log, utils.NotFound("hierarchy node not found"))
		return
	}
	n := models.Find(visible, id)
	if n == nil {
		writeError(w, r, h.log, utils.Forbidden("hierarchy node is outside your scope"))
		return
	}
	utils.OK(w, http.StatusOK, n)
}

func (h *HierarchyHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParentID  *int64          `json:"parent_id"`
		Name      string          `json:"name"`
		Kind      models.NodeKind `json:"kind"`
		AccountID *string         `json:"account_id"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	n := models.HierarchyNode{
		ParentID:  body.ParentID,
		Name:      strings.TrimSpace(body.Name),
		Kind:      body.Kind,
		AccountID: body.AccountID,
	}
	if n.Name == "" {
		writeError(w, r, h.log, utils.Validation("name is required"))
		return
	}
	if !n.Kind.IsValid() {
		writeError(w, r, h.log, utils.Validation("kind must be one of provider, subprovider, partner, account"))
		return
	}

	if n.ParentID != nil {
		if _, err := h.nodes.GetNode(r.Context(), *n.ParentID); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				err = utils.Validation("parent node does not exist")
			}
			writeError(w, r, h.log, err)
			return
		}
	}

	if err := h.nodes.CreateNode(r.Context(), &n); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.OK(w, http.StatusCreated, n)
}
