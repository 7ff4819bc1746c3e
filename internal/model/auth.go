package model

import "github.com/golang-jwt/jwt/v5"

// Role gates dashboards; roles form a hierarchy student < admin < superadmin
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Rank orders roles for hierarchy checks
func (r Role) Rank() int {
	switch r {
	case RoleStudent:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r grants the permissions of min
func (r Role) AtLeast(min Role) bool {
	return r.Rank() > 0 && r.Rank() >= min.Rank()
}

// UserClaims are the JWT claims issued by the identity provider
type UserClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenRequest is the body of the debug-only token endpoint
type TokenRequest struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// TokenResponse is returned when a token is issued
type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"uid"`
}
