package models

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleUser        Role = "user"
	RoleSubprovider Role = "subprovider"
	RolePartner     Role = "partner"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleSubprovider, RolePartner:
		return true
	}
	return false
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password_hash" json:"-"`
	Role      Role      `db:"role" json:"role"`
	AccountID *string   `db:"account_id" json:"account_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PublicUser is the subset of User returned by the login endpoint.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// HasAccount reports whether the user is bound to a cloud account.
func (u *User) HasAccount() bool {
	return u.AccountID != nil && *u.AccountID != ""
}
