package user

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"courseadmin/internal/flight"
	"courseadmin/pkg/apierr"

	"golang.org/x/crypto/blake2b"
)

var ErrMissingFields = errors.New("all fields are required")

const (
	msgLoginFailed    = "invalid credentials or server error"
	msgRegisterFailed = "failed to register user"
)

// FormError is a failed login or registration, with the text to show on the
// form.
type FormError struct {
	Message string
	Err     error
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// SessionStarter receives the tokens of a successful exchange.
type SessionStarter interface {
	Login(ctx context.Context, accessToken, refreshToken string) error
	Logout(ctx context.Context) error
}

type ServiceInterface interface {
	Login(ctx context.Context, form LoginForm) error
	Register(ctx context.Context, form RegisterForm) error
	Logout(ctx context.Context) error
}

type Service struct {
	Backend Backend
	Session SessionStarter
	Logger  *slog.Logger

	inflight flight.Group
}

func NewService(backend Backend, session SessionStarter, logger *slog.Logger) *Service {
	return &Service{Backend: backend, Session: session, Logger: logger}
}

func (s *Service) Login(ctx context.Context, form LoginForm) error {
	form.Email = strings.TrimSpace(form.Email)
	if form.Email == "" || form.Password == "" {
		return &FormError{Message: msgLoginFailed, Err: ErrMissingFields}
	}

	v, _, err := s.inflight.Do(ctx, formKey("login", form.Email, form.Password), func(ctx context.Context) (any, error) {
		return s.Backend.Login(ctx, form)
	})
	if err != nil {
		s.Logger.Info("login failed", "email", form.Email, "error", err)
		return &FormError{Message: msgLoginFailed, Err: err}
	}

	tokens := v.(Tokens)
	if err := s.Session.Login(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, form RegisterForm) error {
	form.Email = strings.TrimSpace(form.Email)
	form.Username = strings.TrimSpace(form.Username)
	if form.Email == "" || form.Username == "" || form.Password == "" {
		return &FormError{Message: msgRegisterFailed, Err: ErrMissingFields}
	}

	key := formKey("register", form.Email, form.Username, form.Password, string(form.Role))
	v, _, err := s.inflight.Do(ctx, key, func(ctx context.Context) (any, error) {
		return s.Backend.Register(ctx, form)
	})
	if err != nil {
		msg := msgRegisterFailed
		if reason, ok := apierr.Rejection(err); ok && reason != "" {
			msg = reason
		}
		s.Logger.Info("register failed", "email", form.Email, "error", err)
		return &FormError{Message: msg, Err: err}
	}

	tokens := v.(Tokens)
	if err := s.Session.Login(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.Session.Logout(ctx)
}

// formKey identifies one exact submission. Only identical forms share a
// backend call; the password is hashed so it never sits in a map key.
func formKey(action string, fields ...string) string {
	h, _ := blake2b.New256(nil)
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return action + ":" + hex.EncodeToString(h.Sum(nil))
}
