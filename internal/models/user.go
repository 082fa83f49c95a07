package models

import (
	"fmt"
	"strings"
	"time"
)

// Role controls what a session may do.
type Role string

const (
	RoleStudent Role = "student"
	RoleEditor  Role = "editor"
	RoleAdmin   Role = "admin"
)

// ValidRoles returns all assignable roles.
func ValidRoles() []Role {
	return []Role{RoleStudent, RoleEditor, RoleAdmin}
}

// User is an account on the local replica. Users are never hard-deleted in
// normal flow; only bulk store resets remove them.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	TenantID     string    `json:"tenantId"`
	Role         Role      `json:"role"`
	TokenBalance int       `json:"tokenBalance"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks required fields and the non-negative balance invariant.
func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email %q", u.Email)
	}
	if u.TenantID == "" {
		return fmt.Errorf("user requires a tenant")
	}
	switch u.Role {
	case RoleStudent, RoleEditor, RoleAdmin:
	default:
		return fmt.Errorf("invalid role %q", u.Role)
	}
	if u.TokenBalance < 0 {
		return fmt.Errorf("token balance must be non-negative, got %d", u.TokenBalance)
	}
	return nil
}

// IsAdmin reports whether the user holds the administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
