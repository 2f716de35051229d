// Package store holds the SQL repositories behind the portal API. Queries
// are written with ? placeholders and rebound for the active driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type UserRepository interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error
	CreateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

type QuotaRepository interface {
	// ListQuotas returns every quota when accountID is empty.
	ListQuotas(ctx context.Context, accountID string) ([]models.Quota, error)
	GetQuota(ctx context.Context, id int64) (*models.Quota, error)
	CreateQuota(ctx context.Context, q *models.Quota) error
	UpdateQuotaLimit(ctx context.Context, id, limit int64) (*models.Quota, error)
}

type HierarchyRepository interface {
	ListNodes(ctx context.Context) ([]*models.HierarchyNode, error)
	GetNode(ctx context.Context, id int64) (*models.HierarchyNode, error)
	CreateNode(ctx context.Context, n *models.HierarchyNode) error
}

const (
	mysqlDuplicateEntry  = 1062
	pgUniqueViolation    = "23505"
	pgForeignKeyViolated = "23503"
	mysqlNoReferencedRow = 1452
)

func isPostgres(db *sqlx.DB) bool {
	return sqlx.BindType(db.DriverName()) == sqlx.DOLLAR
}

// insertReturningID runs an INSERT and reports the new row id. Postgres
// has no LastInsertId, so RETURNING is appended there.
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, args ...any) (int64, error) {
	if isPostgres(db) {
		var id int64
		err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgUniqueViolation
	}
	return false
}

func isMissingReference(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlNoReferencedRow
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == pgForeignKeyViolated
	}
	return false
}

// dbError maps driver failures onto the error taxonomy. what names the
// missing entity for not-found errors.
func dbError(err error, what string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return utils.NotFound(what + " not found")
	case isDuplicate(err):
		return utils.Conflict(what + " already exists")
	}
	return fmt.Errorf("db error: %w", err)
}
