package session

import (
	"context"
	"errors"

	"courseadmin/pkg/claims"
)

// Fixed keys of the durable token store.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refreshToken"
)

var ErrEmptyAccessToken = errors.New("access token is empty")

type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is the caller's authenticated identity. Role is derived once, when
// the session is built.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         claims.Role
}

func newSession(accessToken, refreshToken string) *Session {
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         claims.RoleOf(accessToken),
	}
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.AccessToken != ""
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == claims.RoleAdmin
}

// Store is durable key-value storage for the two tokens. Get returns "" with
// a nil error for a missing key; Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type contextKey string

const sessionContextKey contextKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	return s, ok && s.IsAuthenticated()
}
