// Package auth verifies portal credentials and issues and checks the bearer
// tokens that protect the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords.
var ErrInvalidCredentials = &utils.Error{Kind: utils.ErrUnauthorized, Message: "invalid credentials"}

type LoginResult struct {
	User      models.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type NewUser struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      models.Role `json:"role"`
	AccountID *string     `json:"account_id,omitempty"`
}

func (n *NewUser) Validate() error {
	n.Username = strings.TrimSpace(n.Username)
	n.Email = strings.TrimSpace(n.Email)
	switch {
	case n.Username == "":
		return utils.Validation("username is required")
	case n.Email == "" || !strings.Contains(n.Email, "@"):
		return utils.Validation("a valid email is required")
	case !n.Role.IsValid():
		return utils.Validation("role must be one of admin, user, subprovider, partner")
	}
	return validatePassword(n.Password)
}

type Service struct {
	users      store.UserRepository
	tokens     *TokenManager
	bcryptCost int
	dummyHash  string
	log        logrus.FieldLogger
}

func NewService(users store.UserRepository, tokens *TokenManager, bcryptCost int, log logrus.FieldLogger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  newDummyHash(bcryptCost),
		log:        log,
	}
}

// Login looks the user up by exact username and checks the password. Both
// failure modes return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, utils.Validation("username and password are required")
	}

	u, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			CheckPassword(s.dummyHash, password)
			s.log.WithField("username", username).Info("login rejected: unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !CheckPassword(u.Password, password) {
		s.log.WithField("username", username).Info("login rejected: password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

// ChangePassword replaces the caller's password after re-checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	u, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(u.Password, current) {
		return ErrInvalidCredentials
	}

	return s.SetPassword(ctx, u.Username, next)
}

// SetPassword stores a new hash without checking the old password. Used by
// the admin tooling.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, username, hash)
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		Role:      in.Role,
		AccountID: in.AccountID,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
