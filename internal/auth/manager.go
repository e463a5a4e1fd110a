// Package auth manages the API session token: restoring it from the local
// store, logging in and out, and dropping it when the server rejects it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/store"
)

// ErrMissingCredentials is returned when login is attempted without a
// username or password.
var ErrMissingCredentials = errors.New("username and password are required")

// Manager owns the session token of one api.Client.
type Manager struct {
	client *api.Client
	repo   store.CredentialRepo

	mu       sync.RWMutex
	username string
}

// NewManager creates a Manager. repo may be nil, in which case the
// session lives only as long as the process.
func NewManager(client *api.Client, repo store.CredentialRepo) *Manager {
	return &Manager{client: client, repo: repo}
}

// Restore loads a saved session into the client. It reports whether one
// was found.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	if m.repo == nil {
		return false, nil
	}
	c, err := m.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if c == nil || c.Token == "" {
		return false, nil
	}
	m.client.SetToken(c.Token)
	m.setUsername(c.Username)
	return true, nil
}

// Login authenticates against the server and persists the new session.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	token, err := m.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	m.setUsername(username)
	if m.repo != nil {
		if err := m.repo.Save(ctx, store.Credentials{Username: username, Token: token}); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// Logout ends the session. The local token is always cleared; a failure
// of the remote call is returned after that.
func (m *Manager) Logout(ctx context.Context) error {
	remoteErr := m.client.Logout(ctx)
	if err := m.forget(ctx); err != nil {
		return err
	}
	if remoteErr != nil && !api.IsUnauthorized(remoteErr) {
		return fmt.Errorf("remote logout: %w", remoteErr)
	}
	return nil
}

// HandleError drops the session when err shows the server no longer
// accepts the token. It reports whether it did so.
func (m *Manager) HandleError(ctx context.Context, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	m.client.SetToken("")
	_ = m.forget(ctx)
	return true
}

// LoggedIn reports whether the client carries a token.
func (m *Manager) LoggedIn() bool {
	return m.client.Token() != ""
}

// Username returns the logged-in user's name, or "".
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username
}

// Client returns the managed client.
func (m *Manager) Client() *api.Client {
	return m.client
}

func (m *Manager) setUsername(name string) {
	m.mu.Lock()
	m.username = name
	m.mu.Unlock()
}

func (m *Manager) forget(ctx context.Context) error {
	m.setUsername("")
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
