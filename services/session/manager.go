// Package session replaces a global "current user" with an explicit session
// object. A session is created by login or signup, resolved per request from
// a signed token, and torn down on logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/backend"
	"slotbook/services/cache"
	"slotbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the session lifecycle.
type Manager struct {
	api      backend.API
	store    *Store
	cache    *cache.QueryCache
	authTTL  time.Duration
	tokenTTL time.Duration
}

// NewManager wires a Manager. authTTL bounds how long a resolved identity is
// trusted before the backend is asked again; tokenTTL is the lifetime of
// issued tokens.
func NewManager(api backend.API, store *Store, qc *cache.QueryCache, authTTL, tokenTTL time.Duration) *Manager {
	return &Manager{api: api, store: store, cache: qc, authTTL: authTTL, tokenTTL: tokenTTL}
}

// Login signs the host in with the backend and opens a session.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (*Session, string, error) {
	res, err := m.api.Login(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return m.open(ctx, res)
}

// Signup registers the host with the backend and opens a session.
func (m *Manager) Signup(ctx context.Context, req models.SignupRequest) (*Session, string, error) {
	res, err := m.api.Signup(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return m.open(ctx, res)
}

func (m *Manager) open(ctx context.Context, res *backend.AuthResult) (*Session, string, error) {
	sess := newSession(uuid.New().String(), res.User, res.Cookies)
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, "", err
	}
	token, err := utils.GenerateToken(sess.ID, sess.User.Email, m.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	user := sess.User
	if err := m.cache.Set(ctx, cache.CurrentUserKey(sess.ID), user, m.authTTL); err != nil {
		utils.GetLogger().Warn("Failed to prime current user", zap.String("sessionID", sess.ID), zap.Error(err))
	}
	utils.GetLogger().Info("Session opened", zap.String("sessionID", sess.ID), zap.String("userId", user.UserID))
	return sess, token, nil
}

// Resolve loads the session behind token and confirms the identity with the
// backend, at most once per auth stale time. The identity probe is never
// retried: a 401 ends the session with ErrSessionExpired, any other failure
// is returned as is.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	id, err := utils.ExtractIDFromToken(token)
	if err != nil {
		return nil, ErrNoSession
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := cache.Fetch(ctx, m.cache, cache.CurrentUserKey(id), m.authTTL, func(ctx context.Context) (models.User, error) {
		u, err := m.api.Me(sess.Context(ctx))
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		if apierr.IsAuth(err) {
			m.drop(ctx, sess.ID)
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if user != sess.User {
		sess.User = user
		if err := m.store.Save(ctx, sess); err != nil {
			utils.GetLogger().Warn("Failed to refresh session user", zap.String("sessionID", id), zap.Error(err))
		}
	}
	return sess, nil
}

// Logout ends the backend session and removes everything cached for it. The
// local session is removed even when the backend call fails.
func (m *Manager) Logout(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNoSession
	}
	backendErr := m.api.Logout(sess.Context(ctx))
	if backendErr != nil && !apierr.IsAuth(backendErr) {
		utils.GetLogger().Warn("Backend logout failed", zap.String("sessionID", sess.ID), zap.Error(backendErr))
	}
	m.drop(ctx, sess.ID)
	if backendErr != nil && !apierr.IsAuth(backendErr) {
		return backendErr
	}
	return nil
}

func (m *Manager) drop(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil {
		utils.GetLogger().Warn("Failed to delete session", zap.String("sessionID", id), zap.Error(err))
	}
	if err := m.cache.Delete(ctx, cache.CurrentUserKey(id)); err != nil {
		utils.GetLogger().Warn("Failed to drop cached identity", zap.String("sessionID", id), zap.Error(err))
	}
}

// IsUnauthenticated reports errors that mean "no signed-in host".
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionExpired)
}
