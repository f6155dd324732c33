package user_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"courseadmin/pkg/apierr"
	"courseadmin/pkg/claims"
	"courseadmin/pkg/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, form user.LoginForm) (user.Tokens, error) {
	args := m.Called(form)
	return args.Get(0).(user.Tokens), args.Error(1)
}

func (m *mockBackend) Register(ctx context.Context, form user.RegisterForm) (user.Tokens, error) {
	args := m.Called(form)
	return args.Get(0).(user.Tokens), args.Error(1)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Login(ctx context.Context, accessToken, refreshToken string) error {
	return m.Called(accessToken, refreshToken).Error(0)
}

func (m *mockSession) Logout(ctx context.Context) error {
	return m.Called().Error(0)
}

func TestService_Login(t *testing.T) {
	backend := new(mockBackend)
	session := new(mockSession)
	svc := user.NewService(backend, session, logger)

	t.Run("success", func(t *testing.T) {
		backend.On("Login", user.LoginForm{Email: "ann@example.com", Password: "pw"}).
			Return(user.Tokens{AccessToken: "a", RefreshToken: "r"}, nil).Once()
		session.On("Login", "a", "r").Return(nil).Once()

		err := svc.Login(context.Background(), user.LoginForm{Email: " ann@example.com ", Password: "pw"})

		assert.NoError(t, err)
	})

	t.Run("bad credentials", func(t *testing.T) {
		backend.On("Login", user.LoginForm{Email: "ann@example.com", Password: "bad"}).
			Return(user.Tokens{}, &apierr.StatusError{Status: 401}).Once()

		err := svc.Login(context.Background(), user.LoginForm{Email: "ann@example.com", Password: "bad"})

		var fe *user.FormError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "invalid credentials or server error", fe.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		err := svc.Login(context.Background(), user.LoginForm{Email: "ann@example.com"})
		assert.ErrorIs(t, err, user.ErrMissingFields)
	})

	t.Run("session store fails", func(t *testing.T) {
		backend.On("Login", user.LoginForm{Email: "bob@example.com", Password: "pw"}).
			Return(user.Tokens{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()
		session.On("Login", "a2", "r2").Return(errors.New("disk full")).Once()

		err := svc.Login(context.Background(), user.LoginForm{Email: "bob@example.com", Password: "pw"})

		assert.Error(t, err)
		var fe *user.FormError
		assert.False(t, errors.As(err, &fe))
	})

	backend.AssertExpectations(t)
	session.AssertExpectations(t)
}

func TestService_ConcurrentLoginsWithDifferentPasswords(t *testing.T) {
	backend := new(mockBackend)
	session := new(mockSession)
	svc := user.NewService(backend, session, logger)

	right := user.LoginForm{Email: "ann@example.com", Password: "right"}
	wrong := user.LoginForm{Email: "ann@example.com", Password: "wrong"}

	entered := make(chan struct{})
	release := make(chan struct{})
	backend.On("Login", right).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(user.Tokens{AccessToken: "a", RefreshToken: "r"}, nil).Once()
	backend.On("Login", wrong).Return(user.Tokens{}, &apierr.StatusError{Status: 401}).Once()
	session.On("Login", "a", "r").Return(nil).Once()

	rightErr := make(chan error, 1)
	go func() {
		rightErr <- svc.Login(context.Background(), right)
	}()
	<-entered

	err := svc.Login(context.Background(), wrong)

	var fe *user.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "invalid credentials or server error", fe.Message)

	close(release)
	assert.NoError(t, <-rightErr)
	backend.AssertNumberOfCalls(t, "Login", 2)
	session.AssertExpectations(t)
}

func TestService_CancelledCallerDoesNotFailDuplicate(t *testing.T) {
	backend := new(mockBackend)
	session := new(mockSession)
	svc := user.NewService(backend, session, logger)

	form := user.LoginForm{Email: "ann@example.com", Password: "pw"}
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.On("Login", form).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(user.Tokens{AccessToken: "a", RefreshToken: "r"}, nil).Once()
	session.On("Login", "a", "r").Return(nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		firstErr <- svc.Login(firstCtx, form)
	}()
	<-entered

	secondErr := make(chan error, 1)
	go func() {
		secondErr <- svc.Login(context.Background(), form)
	}()
	// let the second submission join the in-flight call
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.NoError(t, <-secondErr)
	backend.AssertNumberOfCalls(t, "Login", 1)
}

func TestService_Register(t *testing.T) {
	backend := new(mockBackend)
	session := new(mockSession)
	svc := user.NewService(backend, session, logger)

	form := user.RegisterForm{Email: "ann@example.com", Username: "ann", Password: "pw", Role: claims.RoleAdmin}

	t.Run("success", func(t *testing.T) {
		backend.On("Register", form).Return(user.Tokens{AccessToken: "a", RefreshToken: "r"}, nil).Once()
		session.On("Login", "a", "r").Return(nil).Once()

		assert.NoError(t, svc.Register(context.Background(), form))
	})

	t.Run("backend reason surfaced", func(t *testing.T) {
		backend.On("Register", form).Return(user.Tokens{}, &apierr.StatusError{Status: 409, Message: "email already in use"}).Once()

		err := svc.Register(context.Background(), form)

		var fe *user.FormError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "email already in use", fe.Message)
	})

	t.Run("transport failure uses generic message", func(t *testing.T) {
		backend.On("Register", form).Return(user.Tokens{}, errors.New("dial tcp")).Once()

		err := svc.Register(context.Background(), form)

		var fe *user.FormError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "failed to register user", fe.Message)
	})

	backend.AssertExpectations(t)
	session.AssertExpectations(t)
}

func TestRoleCode(t *testing.T) {
	assert.Equal(t, 0, user.RoleCode(claims.RoleAdmin))
	assert.Equal(t, 1, user.RoleCode(claims.RoleUser))
	assert.Equal(t, 1, user.RoleCode(""))
}

func TestService_Logout(t *testing.T) {
	session := new(mockSession)
	session.On("Logout").Return(nil).Once()

	svc := user.NewService(new(mockBackend), session, logger)

	assert.NoError(t, svc.Logout(context.Background()))
	session.AssertExpectations(t)
}
