package domain

import (
	"context"
	"strings"
	"time"
)

// User domain errors.
var (
	ErrUserNotFound = &Error{Code: ENOTFOUND, Message: "User not found"}
)

// Role is a user's permission level.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Identity is the authenticated principal reported by the auth collaborator.
// It is always available once a request is authenticated, so it doubles as
// the minimal profile when the user record cannot be read.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// User is the stored profile for a customer or admin.
type User struct {
	ID          string    `firestore:"-" json:"id"`
	Email       string    `firestore:"email" json:"email"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	Phone       string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	Role        Role      `firestore:"role" json:"role"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// MinimalUser builds the fallback profile from the identity's basic fields.
func (i Identity) MinimalUser() User {
	role := i.Role
	if role == "" {
		role = RoleCustomer
	}
	return User{
		ID:          i.UID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		Role:        role,
	}
}

// ProfileUpdate holds the fields a user may change on their own profile.
type ProfileUpdate struct {
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
}

// Validate trims and checks the update.
func (u *ProfileUpdate) Validate(op string) error {
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	u.Phone = strings.TrimSpace(u.Phone)
	if u.DisplayName == "" {
		return NewValidationError(op, "displayName", "Display name is required")
	}
	return nil
}

// UserRepository is the persistence contract for user profiles.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*User, error)
	SaveUser(ctx context.Context, u *User) error
}
