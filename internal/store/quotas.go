package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

const quotaColumns = `id, account_id, resource_type, limit_value, used_value, updated_at`

type QuotaStore struct {
	db *sqlx.DB
}

func NewQuotaStore(db *sqlx.DB) *QuotaStore {
	return &QuotaStore{db: db}
}

func (s *QuotaStore) ListQuotas(ctx context.Context, accountID string) ([]models.Quota, error) {
	quotas := []models.Quota{}

	var err error
	if accountID == "" {
		err = s.db.SelectContext(ctx, &quotas,
			`SELECT `+quotaColumns+` FROM quotas ORDER BY account_id, resource_type`)
	} else {
		err = s.db.SelectContext(ctx, &quotas, s.db.Rebind(
			`SELECT `+quotaColumns+` FROM quotas WHERE account_id = ? ORDER BY resource_type`), accountID)
	}
	if err != nil {
		return nil, dbError(err, "quota")
	}
	return quotas, nil
}

func (s *QuotaStore) GetQuota(ctx context.Context, id int64) (*models.Quota, error) {
	var q models.Quota
	err := s.db.GetContext(ctx, &q, s.db.Rebind(`SELECT `+quotaColumns+` FROM quotas WHERE id = ?`), id)
	if err != nil {
		return nil, dbError(err, "quota")
	}
	return &q, nil
}

func (s *QuotaStore) CreateQuota(ctx context.Context, q *models.Quota) error {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO quotas (account_id, resource_type, limit_value, used_value, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		q.AccountID, q.ResourceType, q.Limit, q.Used, now)
	if err != nil {
		return dbError(err, "quota")
	}

	q.ID = id
	q.UpdatedAt = now
	return nil
}

// UpdateQuotaLimit sets the limit and returns the stored row.
func (s *QuotaStore) UpdateQuotaLimit(ctx context.Context, id, limit int64) (*models.Quota, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE quotas
		SET limit_value = ?, updated_at = ?
		WHERE id = ?
	`), limit, time.Now().UTC(), id)
	if err != nil {
		return nil, dbError(err, "quota")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, utils.NotFound("quota not found")
	}
	return s.GetQuota(ctx, id)
}
