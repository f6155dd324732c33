package user

import (
	"context"

	"courseadmin/pkg/claims"
)

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterForm struct {
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     claims.Role `json:"role"`
}

// RoleCode is the backend's enum value for r: Admin = 0, User = 1. Anything
// unrecognized registers as a User.
func RoleCode(r claims.Role) int {
	if r == claims.RoleAdmin {
		return 0
	}
	return 1
}

type Backend interface {
	Login(ctx context.Context, form LoginForm) (Tokens, error)
	Register(ctx context.Context, form RegisterForm) (Tokens, error)
}
