package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

const userColumns = `id, username, email, password_hash, role, account_id, created_at, updated_at`

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// FindUserByUsername matches case-sensitively even when the column
// collation does not.
func (s *UserStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?
	`), username)
	if err != nil {
		return nil, dbError(err, "user")
	}
	if u.Username != username {
		return nil, utils.NotFound("user not found")
	}
	return &u, nil
}

func (s *UserStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`), id)
	if err != nil {
		return nil, dbError(err, "user")
	}
	return &u, nil
}

func (s *UserStore) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE username = ?
	`), passwordHash, time.Now().UTC(), username)
	if err != nil {
		return dbError(err, "user")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return utils.NotFound("user not found")
	}
	return nil
}

func (s *UserStore) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, s.db, `
		INSERT INTO users (username, email, password_hash, role, account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.Password, u.Role, u.AccountID, now, now)
	if err != nil {
		return dbError(err, "user")
	}

	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, dbError(err, "user")
	}
	return users, nil
}
