package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Manager owns the process-wide authentication state and is the only writer
// of the token store.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	current *Session

	ready     chan struct{}
	readyOnce sync.Once
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		state:  StateUnknown,
		ready:  make(chan struct{}),
	}
}

// Initialize checks durable storage once and settles the state. Until it
// returns successfully the state stays Unknown.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUnknown {
		return nil
	}

	access, refresh, err := m.readTokens(ctx)
	if errors.Is(err, ErrUnsealable) {
		// sealed under another key: the pair is useless, start logged out
		m.logger.Warn("stored session cannot be opened, discarding it")
		if err := m.clear(ctx); err != nil {
			return err
		}
		access, refresh, err = "", "", nil
	}
	if err != nil {
		return err
	}

	if access != "" {
		m.current = newSession(access, refresh)
		m.state = StateAuthenticated
		m.logger.Info("session restored", "role", m.current.Role)
	} else {
		m.state = StateUnauthenticated
		m.logger.Info("no stored session")
	}
	m.readyOnce.Do(func() { close(m.ready) })
	return nil
}

func (m *Manager) readTokens(ctx context.Context) (access, refresh string, err error) {
	access, err = m.store.Get(ctx, AccessTokenKey)
	if err != nil {
		return "", "", fmt.Errorf("read access token: %w", err)
	}
	refresh, err = m.store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", "", fmt.Errorf("read refresh token: %w", err)
	}
	return access, refresh, nil
}

// Ready is closed once the state has left Unknown, either through Initialize
// or an explicit Login or Logout. Callers that must not act before then can
// block on it.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Current() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated {
		return nil, false
	}
	return m.current, true
}

func (m *Manager) AccessToken() (string, bool) {
	s, ok := m.Current()
	if !ok {
		return "", false
	}
	return s.AccessToken, true
}

// Login persists both tokens and switches to Authenticated. The caller has
// already obtained the tokens from the backend.
func (m *Manager) Login(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return ErrEmptyAccessToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, AccessTokenKey, accessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := m.store.Set(ctx, RefreshTokenKey, refreshToken); err != nil {
		// do not leave a half-written pair behind
		if rbErr := m.store.Delete(ctx, AccessTokenKey); rbErr != nil {
			m.logger.Error("rollback access token", "error", rbErr)
		}
		return fmt.Errorf("store refresh token: %w", err)
	}

	m.current = newSession(accessToken, refreshToken)
	m.state = StateAuthenticated
	m.readyOnce.Do(func() { close(m.ready) })
	m.logger.Info("logged in", "role", m.current.Role)
	return nil
}

// Logout purges both tokens. Logging out without a session is a no-op. If
// storage cannot be cleared the session is kept and the error returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateUnauthenticated {
		return nil
	}
	if err := m.clear(ctx); err != nil {
		return err
	}

	wasAuthenticated := m.state == StateAuthenticated
	m.current = nil
	m.state = StateUnauthenticated
	m.readyOnce.Do(func() { close(m.ready) })
	if wasAuthenticated {
		m.logger.Info("logged out")
	}
	return nil
}

// clear deletes the refresh token first: the access token is what marks the
// session as present.
func (m *Manager) clear(ctx context.Context) error {
	for _, key := range []string{RefreshTokenKey, AccessTokenKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Error("clear token", "key", key, "error", err)
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}
