// Package users provides the minimal user catalog the reconciliation core
// needs: actor identity for denormalized snapshots and the admin lookup that
// feeds the notification fan-out.
package users

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
)

// Role defines a user's role within a tenant.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User represents an account scoped to one tenant.
type User struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID id.ID  `db:"tenant_id" json:"tenantId"`
	BranchID *id.ID `db:"branch_id" json:"branchId,omitempty"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Role     Role   `db:"role" json:"role"`

	PasswordHash string `db:"password_hash" json:"-"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new active user.
func New(tenantID id.ID, name, email string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id.New(),
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(plain string) error {
	if len(plain) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks user invariants.
func (u *User) Validate(ctx context.Context) error {
	if id.IsNil(u.TenantID) {
		return apperror.NewValidation("tenant is required").WithDetail("field", "tenantId")
	}
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	switch u.Role {
	case RoleAdmin, RoleStaff:
	default:
		return apperror.NewValidation("unknown role").WithDetail("role", string(u.Role))
	}
	return nil
}
