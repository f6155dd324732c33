package claims

import (
	"fmt"
	"strings"

	jwt "github.com/dgrijalva/jwt-go"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// roleKeys are the claim names a backend may carry the role under, in lookup
// order. The second is what ASP.NET Core emits for ClaimTypes.Role.
var roleKeys = []string{
	"role",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
	"roles",
}

// Decode reads the claims of an access token without verifying its signature.
// The client holds no key; the backend verifies tokens, this only reads them.
func Decode(token string) (jwt.MapClaims, error) {
	c := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, c); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	return c, nil
}

// RoleOf derives the caller's role from an access token. Anything other than
// an explicit admin role claim yields RoleUser. The result only decides which
// actions the console offers; the backend enforces authorization.
func RoleOf(token string) Role {
	c, err := Decode(token)
	if err != nil {
		return RoleUser
	}
	for _, key := range roleKeys {
		if v, ok := c[key]; ok {
			return roleFrom(v)
		}
	}
	return RoleUser
}

func roleFrom(v any) Role {
	switch val := v.(type) {
	case string:
		if isAdmin(val) {
			return RoleAdmin
		}
	case float64:
		// numeric enum as sent on registration: Admin = 0, User = 1
		if val == 0 {
			return RoleAdmin
		}
	case []any:
		for _, item := range val {
			if roleFrom(item) == RoleAdmin {
				return RoleAdmin
			}
		}
	}
	return RoleUser
}

func isAdmin(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, string(RoleAdmin)) || strings.EqualFold(s, "administrator") || s == "0"
}
