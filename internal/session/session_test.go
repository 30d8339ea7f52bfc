package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/internal/repository"
	"whatsapp-boost/pkg/logger"
)

type fakeAuth struct {
	loginErr  error
	meErr     error
	me        model.User
	loggedOut []string
}

func (f *fakeAuth) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &model.AuthResult{Token: "tok-" + req.Phone, User: model.User{ID: "u1", Name: "Awa", Role: model.RoleUser}}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error) {
	return &model.AuthResult{Token: "tok-new", User: model.User{ID: "u9", Name: req.Name, Role: model.RoleUser}}, nil
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*model.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &f.me, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func newTestManager(t *testing.T, auth *fakeAuth) *Manager {
	t.Helper()
	repo, err := repository.NewSessionRepository(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewManager(repo, auth, time.Hour, logger.Nop())
}

const chat = "237670000000@s.whatsapp.net"

func TestLoginThenCurrent(t *testing.T) {
	m := newTestManager(t, &fakeAuth{})

	_, err := m.Current(chat)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	sess, err := m.Login(context.Background(), chat, "237670000000", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-237670000000", sess.Token)

	current, err := m.Current(chat)
	require.NoError(t, err)
	assert.Equal(t, "u1", current.UserID)
	assert.False(t, current.IsAdmin())
}

func TestLoginFailureStoresNothing(t *testing.T) {
	m := newTestManager(t, &fakeAuth{loginErr: &api.Error{Status: 400, Message: "Identifiants invalides"}})

	_, err := m.Login(context.Background(), chat, "237670000000", "bad")
	assert.Equal(t, "Identifiants invalides", api.Message(err))

	_, err = m.Current(chat)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestRefreshUpdatesRole(t *testing.T) {
	auth := &fakeAuth{me: model.User{ID: "u1", Name: "Awa K.", Role: model.RoleAdmin}}
	m := newTestManager(t, auth)

	_, err := m.Login(context.Background(), chat, "237670000000", "pw")
	require.NoError(t, err)

	sess, user, err := m.Refresh(context.Background(), chat)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())
	assert.Equal(t, "Awa K.", user.Name)

	current, err := m.Current(chat)
	require.NoError(t, err)
	assert.True(t, current.IsAdmin())
}

func TestRefreshUnauthorizedTearsDown(t *testing.T) {
	auth := &fakeAuth{meErr: api.ErrUnauthorized}
	m := newTestManager(t, auth)

	var tornDown []string
	m.OnTeardown(func(c string) { tornDown = append(tornDown, c) })

	_, err := m.Login(context.Background(), chat, "237670000000", "pw")
	require.NoError(t, err)

	_, _, err = m.Refresh(context.Background(), chat)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, []string{chat}, tornDown)

	_, err = m.Current(chat)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestTeardownTokenKeepsNewerSession(t *testing.T) {
	m := newTestManager(t, &fakeAuth{})

	var tornDown []string
	m.OnTeardown(func(c string) { tornDown = append(tornDown, c) })

	old, err := m.Login(context.Background(), chat, "237670000000", "pw")
	require.NoError(t, err)
	fresh, err := m.Login(context.Background(), chat, "237670000001", "pw")
	require.NoError(t, err)
	require.NotEqual(t, old.Token, fresh.Token)

	assert.False(t, m.TeardownToken(chat, old.Token))
	assert.Empty(t, tornDown)

	current, err := m.Current(chat)
	require.NoError(t, err)
	assert.Equal(t, fresh.Token, current.Token)

	assert.True(t, m.TeardownToken(chat, fresh.Token))
	assert.Equal(t, []string{chat}, tornDown)
	_, err = m.Current(chat)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestRefreshTransientErrorKeepsSession(t *testing.T) {
	auth := &fakeAuth{meErr: errors.New("connection reset")}
	m := newTestManager(t, auth)

	_, err := m.Login(context.Background(), chat, "237670000000", "pw")
	require.NoError(t, err)

	_, _, err = m.Refresh(context.Background(), chat)
	assert.Error(t, err)

	_, err = m.Current(chat)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestManager(t, auth)

	_, err := m.Register(context.Background(), chat, model.RegisterRequest{Name: "Paul", Phone: "237690000000", Password: "pw", ReferralCode: "AWA1"})
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), chat))
	assert.Equal(t, []string{"tok-new"}, auth.loggedOut)

	assert.ErrorIs(t, m.Logout(context.Background(), chat), ErrNotLoggedIn)
}
