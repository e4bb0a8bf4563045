// Package session owns the authentication token lifecycle. The token
// is the only persisted credential artifact; expiry is validated by
// decoding claims locally, never by re-verifying the signature (the
// signing secret lives on the server).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gatepass-client/internal/gateway"
	"gatepass-client/internal/storage"
)

var (
	// ErrServerUnavailable means login could not reach the remote API.
	ErrServerUnavailable = errors.New("authentication server unavailable")
	ErrRefreshFailed     = errors.New("token refresh failed")
)

// Session is the authenticated state: token, user snapshot and expiry.
type Session struct {
	Token     string
	User      storage.User
	ExpiresAt time.Time
}

// Manager owns the Session. All mutation goes through login, refresh
// and logout; an authorization-denied response anywhere tears the
// session down through Invalidate. Two concurrent logins are allowed
// to race; the last write to the credential row wins.
type Manager struct {
	store  storage.Provider
	gw     *gateway.Client
	logger *slog.Logger

	mu  sync.Mutex
	cur *Session
}

func NewManager(store storage.Provider, gw *gateway.Client) *Manager {
	return &Manager{
		store:  store,
		gw:     gw,
		logger: slog.With("component", "session"),
	}
}

// Token implements gateway.TokenSource. An expired persisted token is
// never handed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	if m.cur != nil {
		token := m.cur.Token
		m.mu.Unlock()
		return token
	}
	m.mu.Unlock()

	cred, err := m.store.GetCredential(context.Background())
	if err != nil || cred == nil {
		return ""
	}
	exp, err := tokenExpiry(cred.Token)
	if err != nil || !time.Now().Before(exp) {
		return ""
	}
	return cred.Token
}

// Invalidate implements gateway.TokenSource: forced teardown on any
// authorization-denied response, regardless of which caller triggered
// the request.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.cur = nil
	m.mu.Unlock()

	if err := m.store.DeleteCredential(context.Background()); err != nil {
		m.logger.Error("Failed to clear credential", "error", err)
	}
	m.logger.Info("Session invalidated")
}

// Login exchanges credentials for a session and persists it.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	data, err := m.gw.Login(ctx, email, password)
	if err != nil {
		if gateway.IsConnectivity(err) {
			return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
		}
		return nil, err
	}

	exp, err := tokenExpiry(data.Token)
	if err != nil {
		m.logger.Warn("Issued token has no readable expiry", "error", err)
	}

	now := time.Now().UTC()
	if err := m.store.PutCredential(ctx, storage.Credential{
		Token:   data.Token,
		UserID:  data.User.ID,
		SavedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := m.store.PutUser(ctx, data.User); err != nil {
		m.logger.Warn("Failed to cache user snapshot", "error", err)
	}

	s := &Session{Token: data.Token, User: data.User, ExpiresAt: exp}
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()

	m.logger.Info("Logged in", "user", data.User.Email)
	copied := *s
	return &copied, nil
}

// Logout invalidates the token remotely on a best-effort basis and
// unconditionally clears local state. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.gw.Logout(ctx); err != nil {
		m.logger.Warn("Remote logout failed, clearing local session anyway", "error", err)
	}
	m.Invalidate()
}

// Current reconstructs the session from the persisted token. An
// expired token or a failed identity fetch discards the credential and
// yields nil: the guard must log in again.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.cur != nil && (m.cur.ExpiresAt.IsZero() || time.Now().Before(m.cur.ExpiresAt)) {
		copied := *m.cur
		m.mu.Unlock()
		return &copied, nil
	}
	m.cur = nil
	m.mu.Unlock()

	cred, err := m.store.GetCredential(ctx)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, nil
	}

	exp, err := tokenExpiry(cred.Token)
	if err != nil || !time.Now().Before(exp) {
		m.logger.Info("Persisted token expired, discarding")
		m.Invalidate()
		return nil, nil
	}

	user, err := m.gw.Me(ctx)
	if err != nil {
		if gateway.IsConnectivity(err) {
			m.logger.Warn("Identity fetch unreachable, discarding session", "error", err)
		} else {
			m.logger.Info("Identity fetch rejected, discarding session", "error", err)
		}
		m.Invalidate()
		return nil, nil
	}

	if err := m.store.PutUser(ctx, *user); err != nil {
		m.logger.Warn("Failed to cache user snapshot", "error", err)
	}

	s := &Session{Token: cred.Token, User: *user, ExpiresAt: exp}
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()

	copied := *s
	return &copied, nil
}

// Refresh exchanges a still-valid token for a new one. Never invoked
// automatically; callers decide when, which keeps retry storms out of
// the core.
func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	token, err := m.gw.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	exp, err := tokenExpiry(token)
	if err != nil {
		m.logger.Warn("Refreshed token has no readable expiry", "error", err)
	}

	m.mu.Lock()
	var user storage.User
	if m.cur != nil {
		user = m.cur.User
	}
	m.mu.Unlock()

	// A refresh can run without an in-memory session, straight off the
	// persisted token. The identity must survive the credential rewrite.
	if user.ID == "" {
		if cred, err := m.store.GetCredential(ctx); err == nil && cred != nil {
			user.ID = cred.UserID
			if cached, err := m.store.GetUser(ctx, cred.UserID); err == nil && cached != nil {
				user = *cached
			}
		}
	}

	m.mu.Lock()
	m.cur = &Session{Token: token, User: user, ExpiresAt: exp}
	copied := *m.cur
	m.mu.Unlock()

	if err := m.store.PutCredential(ctx, storage.Credential{
		Token:   token,
		UserID:  user.ID,
		SavedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &copied, nil
}

// tokenExpiry decodes the exp claim without verifying the signature.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return exp.Time, nil
}
