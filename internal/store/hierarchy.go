package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

const nodeColumns = `id, parent_id, name, kind, account_id, created_at`

type HierarchyStore struct {
	db *sqlx.DB
}

func NewHierarchyStore(db *sqlx.DB) *HierarchyStore {
	return &HierarchyStore{db: db}
}

func (s *HierarchyStore) ListNodes(ctx context.Context) ([]*models.HierarchyNode, error) {
	nodes := []*models.HierarchyNode{}
	err := s.db.SelectContext(ctx, &nodes, `SELECT `+nodeColumns+` FROM hierarchy_nodes ORDER BY id`)
	if err != nil {
		return nil, dbError(err, "hierarchy node")
	}
	return nodes, nil
}

func (s *HierarchyStore) GetNode(ctx context.Context, id int64) (*models.HierarchyNode, error) {
	var n models.HierarchyNode
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT `+nodeColumns+` FROM hierarchy_nodes WHERE id = ?`), id)
	if err != nil {
		return nil, dbError(err, "hierarchy node")
	}
	return &n, nil
}

func (s *HierarchyStore) CreateNode(ctx context.Context, n *models.HierarchyNode) error {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO hierarchy_nodes (parent_id, name, kind, account_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.ParentID, n.Name, n.Kind, n.AccountID, now)
	if err != nil {
		if isMissingReference(err) {
			return utils.Validation("parent node does not exist")
		}
		return dbError(err, "hierarchy node")
	}

	n.ID = id
	n.CreatedAt = now
	return nil
}
