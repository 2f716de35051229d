package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/cloudportal/internal/logging"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type fakeUsers struct {
	byName  map[string]*models.User
	findErr error
	created []*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byName: map[string]*models.User{}}
	for _, u := range users {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, utils.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeUsers) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, utils.NotFound("user not found")
}

func (f *fakeUsers) UpdateUserPassword(_ context.Context, username, hash string) error {
	u, ok := f.byName[username]
	if !ok {
		return utils.NotFound("user not found")
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	if _, ok := f.byName[u.Username]; ok {
		return utils.Conflict("user already exists")
	}
	u.ID = int64(len(f.byName) + 1)
	f.byName[u.Username] = u
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUsers) ListUsers(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.byName {
		out = append(out, *u)
	}
	return out, nil
}

func mustHashMin(t *testing.T, pw string) string {
	t.Helper()
	h, err := HashPassword(pw, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newTestService(t *testing.T, users *fakeUsers) *Service {
	t.Helper()
	tokens, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(users, tokens, bcrypt.MinCost, logging.Discard())
}

func TestLogin(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Username: "admin", Email: "admin@example.com", Password: mustHashMin(t, "admin123"), Role: models.RoleAdmin},
		&models.User{ID: 2, Username: "partner1", Email: "p@example.com", Password: mustHashMin(t, "partnerpw"), Role: models.RolePartner},
	)
	svc := newTestService(t, users)

	t.Run("success carries stored role", func(t *testing.T) {
		res, err := svc.Login(context.Background(), "partner1", "partnerpw")
		require.NoError(t, err)
		assert.Equal(t, models.RolePartner, res.User.Role)
		assert.NotEmpty(t, res.Token)

		claims, err := svc.tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(2), claims.UserID)
		assert.Equal(t, models.RolePartner, claims.Role)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		_, errUnknown := svc.Login(context.Background(), "nobody", "admin123")
		_, errWrong := svc.Login(context.Background(), "admin", "wrong")

		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)

		s1, m1 := utils.StatusAndMessage(errUnknown)
		s2, m2 := utils.StatusAndMessage(errWrong)
		assert.Equal(t, s1, s2)
		assert.Equal(t, m1, m2)
		assert.Equal(t, 401, s1)
	})

	t.Run("case sensitive username", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "Admin", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "", "admin123")
		assert.ErrorIs(t, err, utils.ErrValidation)
	})
}

func TestLogin_StoreFailureIsNotCredentialError(t *testing.T) {
	users := newFakeUsers()
	users.findErr = errors.New("db error: connection reset")
	svc := newTestService(t, users)

	_, err := svc.Login(context.Background(), "admin", "admin123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrUnauthorized)

	status, msg := utils.StatusAndMessage(err)
	assert.Equal(t, 500, status)
	assert.Equal(t, "internal server error", msg)
}

func TestChangePassword(t *testing.T) {
	admin := &models.User{ID: 1, Username: "admin", Password: mustHashMin(t, "admin123"), Role: models.RoleAdmin}
	svc := newTestService(t, newFakeUsers(admin))

	err := svc.ChangePassword(context.Background(), 1, "wrong-current", "brand-new-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), 1, "admin123", "short")
	assert.ErrorIs(t, err, utils.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), 1, "admin123", "brand-new-pass"))
	assert.True(t, CheckPassword(admin.Password, "brand-new-pass"))

	_, err = svc.Login(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordLengthLimits(t *testing.T) {
	admin := &models.User{ID: 1, Username: "admin", Password: mustHashMin(t, "admin123"), Role: models.RoleAdmin}
	svc := newTestService(t, newFakeUsers(admin))
	long := strings.Repeat("x", 80)

	err := svc.ChangePassword(context.Background(), 1, "admin123", long)
	assert.ErrorIs(t, err, utils.ErrValidation)

	err = svc.SetPassword(context.Background(), "admin", long)
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = svc.CreateUser(context.Background(), NewUser{Username: "long", Email: "l@example.com", Password: long, Role: models.RoleUser})
	require.ErrorIs(t, err, utils.ErrValidation)
	status, _ := utils.StatusAndMessage(err)
	assert.Equal(t, 400, status)

	require.NoError(t, svc.SetPassword(context.Background(), "admin", strings.Repeat("x", MaxPasswordLength)))
}

func TestService_DummyHashMatchesConfiguredCost(t *testing.T) {
	svc := newTestService(t, newFakeUsers())
	cost, err := bcrypt.Cost([]byte(svc.dummyHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestSetPassword_UnknownUser(t *testing.T) {
	svc := newTestService(t, newFakeUsers())
	err := svc.SetPassword(context.Background(), "ghost", "long-enough")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(t, users)

	acct := "acct-7"
	u, err := svc.CreateUser(context.Background(), NewUser{
		Username:  " reseller ",
		Email:     "r@example.com",
		Password:  "reseller-pass",
		Role:      models.RoleSubprovider,
		AccountID: &acct,
	})
	require.NoError(t, err)
	assert.Equal(t, "reseller", u.Username)
	assert.NotEqual(t, "reseller-pass", u.Password)
	assert.True(t, CheckPassword(u.Password, "reseller-pass"))

	_, err = svc.CreateUser(context.Background(), NewUser{Username: "x", Email: "x@example.com", Password: "long-enough", Role: "root"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = svc.CreateUser(context.Background(), NewUser{Username: "reseller", Email: "r@example.com", Password: "reseller-pass", Role: models.RoleUser})
	assert.ErrorIs(t, err, utils.ErrConflict)
}
