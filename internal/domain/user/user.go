package user

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidRole  = errors.New("invalid role")
)

type Role string

const (
	// RoleStaff can read the back office; RoleAdmin can mutate bookings,
	// catalog, settings and manage users.
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	id           uuid.UUID
	email        string
	passwordHash string
	role         Role
	isActive     bool
	lastLoginAt  *time.Time
	createdAt    time.Time
}

func ReconstructUser(
	id uuid.UUID,
	email, passwordHash string,
	role Role,
	isActive bool,
	lastLoginAt *time.Time,
	createdAt time.Time,
) (*User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isActive:     isActive,
		lastLoginAt:  lastLoginAt,
		createdAt:    createdAt,
	}, nil
}

func (u *User) ID() uuid.UUID           { return u.id }
func (u *User) Email() string           { return u.email }
func (u *User) PasswordHash() string    { return u.passwordHash }
func (u *User) Role() Role              { return u.role }
func (u *User) IsActive() bool          { return u.isActive }
func (u *User) LastLoginAt() *time.Time { return u.lastLoginAt }
func (u *User) CreatedAt() time.Time    { return u.createdAt }
