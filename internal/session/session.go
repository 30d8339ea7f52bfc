// Package session holds the authenticated identity of each chat and is the
// only place where that identity is created, refreshed or torn down.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/internal/repository"
	"whatsapp-boost/pkg/logger"
)

// ErrNotLoggedIn is returned when a chat has no active session
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the authenticated identity of one chat
type Session struct {
	Chat      string
	Token     string
	UserID    string
	UserName  string
	Role      model.Role
	ExpiresAt time.Time
}

// IsAdmin reports whether the session may use the admin console
func (s *Session) IsAdmin() bool {
	return s.Role == model.RoleAdmin
}

// Store persists sessions
type Store interface {
	Save(record *repository.SessionRecord) error
	GetByChat(chatJID string) (*repository.SessionRecord, error)
	Delete(chatJID string) error
	DeleteToken(chatJID, token string) (bool, error)
	UpdateIdentity(chatJID, userName, role string) error
}

// Authenticator is the backend side of identity
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error)
	Me(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) error
}

// Manager owns session creation, refresh and teardown
type Manager struct {
	store  Store
	auth   Authenticator
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time

	mu         sync.RWMutex
	onTeardown []func(chat string)
}

// NewManager creates a new session manager
func NewManager(store Store, auth Authenticator, ttl time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// OnTeardown registers fn to run whenever a chat's session ends
func (m *Manager) OnTeardown(fn func(chat string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTeardown = append(m.onTeardown, fn)
}

// Login authenticates a chat with phone and password
func (m *Manager) Login(ctx context.Context, chat, phone, password string) (*Session, error) {
	result, err := m.auth.Login(ctx, model.LoginRequest{Phone: phone, Password: password})
	if err != nil {
		return nil, err
	}
	return m.establish(chat, result)
}

// Register creates an account and logs the chat into it
func (m *Manager) Register(ctx context.Context, chat string, req model.RegisterRequest) (*Session, error) {
	result, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.establish(chat, result)
}

func (m *Manager) establish(chat string, result *model.AuthResult) (*Session, error) {
	now := m.now()
	record := &repository.SessionRecord{
		ChatJID:   chat,
		Token:     result.Token,
		UserID:    result.User.ID,
		UserName:  result.User.Name,
		Role:      string(result.User.Role),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(record); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.WithChat(chat).Info("Session established", "user_id", record.UserID, "role", record.Role)
	return fromRecord(record), nil
}

// Current returns the active session of a chat
func (m *Manager) Current(chat string) (*Session, error) {
	record, err := m.store.GetByChat(chat)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if record == nil {
		return nil, ErrNotLoggedIn
	}
	return fromRecord(record), nil
}

// Refresh re-reads the identity from the backend. A rejected token tears the session down.
func (m *Manager) Refresh(ctx context.Context, chat string) (*Session, *model.User, error) {
	sess, err := m.Current(chat)
	if err != nil {
		return nil, nil, err
	}

	user, err := m.auth.Me(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			m.TeardownToken(chat, sess.Token)
			return nil, nil, ErrNotLoggedIn
		}
		return nil, nil, err
	}

	if user.Name != sess.UserName || user.Role != sess.Role {
		if err := m.store.UpdateIdentity(chat, user.Name, string(user.Role)); err != nil {
			return nil, nil, fmt.Errorf("failed to update session: %w", err)
		}
		sess.UserName = user.Name
		sess.Role = user.Role
	}

	return sess, user, nil
}

// Logout revokes the token on the backend (best effort) and ends the session
func (m *Manager) Logout(ctx context.Context, chat string) error {
	sess, err := m.Current(chat)
	if err != nil {
		return err
	}

	if err := m.auth.Logout(ctx, sess.Token); err != nil && !errors.Is(err, api.ErrUnauthorized) {
		m.logger.WithChat(chat).Warn("Backend logout failed", "error", err)
	}

	m.Teardown(chat)
	return nil
}

// Teardown ends a chat's session locally, e.g. after the backend answered 401
func (m *Manager) Teardown(chat string) {
	if err := m.store.Delete(chat); err != nil {
		m.logger.WithChat(chat).Error("Failed to delete session", "error", err)
	}
	m.ended(chat)
}

// TeardownToken ends a chat's session only if it still uses token. A
// rejection of a token the chat has since replaced leaves the new session
// alone. Reports whether the session was ended.
func (m *Manager) TeardownToken(chat, token string) bool {
	deleted, err := m.store.DeleteToken(chat, token)
	if err != nil {
		m.logger.WithChat(chat).Error("Failed to delete session", "error", err)
		return false
	}
	if !deleted {
		m.logger.WithChat(chat).Debug("Rejected token is no longer current, session kept")
		return false
	}
	m.ended(chat)
	return true
}

func (m *Manager) ended(chat string) {
	m.mu.RLock()
	hooks := append([]func(string){}, m.onTeardown...)
	m.mu.RUnlock()

	for _, fn := range hooks {
		fn(chat)
	}

	m.logger.WithChat(chat).Info("Session ended")
}

func fromRecord(record *repository.SessionRecord) *Session {
	return &Session{
		Chat:      record.ChatJID,
		Token:     record.Token,
		UserID:    record.UserID,
		UserName:  record.UserName,
		Role:      model.Role(record.Role),
		ExpiresAt: record.ExpiresAt,
	}
}
