package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SessionRepository {
	t.Helper()
	repo, err := NewSessionRepository(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewSessionRepositoryCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "nested", "sessions.db")

	repo, err := NewSessionRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.FileExists(t, dbPath)
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	err := repo.Save(&SessionRecord{
		ChatJID:   "237670000000@s.whatsapp.net",
		Token:     "tok-1",
		UserID:    "u1",
		UserName:  "Awa",
		Role:      "user",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	record, err := repo.GetByChat("237670000000@s.whatsapp.net")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "tok-1", record.Token)
	assert.Equal(t, "Awa", record.UserName)

	missing, err := repo.GetByChat("nobody@s.whatsapp.net")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveReplacesExistingChat(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()
	chat := "237670000000@s.whatsapp.net"

	require.NoError(t, repo.Save(&SessionRecord{ChatJID: chat, Token: "old", UserID: "u1", UserName: "Awa", Role: "user", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Save(&SessionRecord{ChatJID: chat, Token: "new", UserID: "u1", UserName: "Awa", Role: "admin", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	record, err := repo.GetByChat(chat)
	require.NoError(t, err)
	assert.Equal(t, "new", record.Token)
	assert.Equal(t, "admin", record.Role)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestExpiredSessionsAreHiddenAndCleaned(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	require.NoError(t, repo.Save(&SessionRecord{ChatJID: "a@s.whatsapp.net", Token: "a", UserID: "u1", UserName: "A", Role: "user", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Save(&SessionRecord{ChatJID: "b@s.whatsapp.net", Token: "b", UserID: "u2", UserName: "B", Role: "user", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	record, err := repo.GetByChat("a@s.whatsapp.net")
	require.NoError(t, err)
	assert.Nil(t, record)

	removed, err := repo.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestDeleteAndUpdateIdentity(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()
	chat := "c@s.whatsapp.net"

	require.NoError(t, repo.Save(&SessionRecord{ChatJID: chat, Token: "t", UserID: "u3", UserName: "C", Role: "user", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.UpdateIdentity(chat, "Claire", "admin"))

	record, err := repo.GetByChat(chat)
	require.NoError(t, err)
	assert.Equal(t, "Claire", record.UserName)
	assert.Equal(t, "admin", record.Role)

	require.NoError(t, repo.Delete(chat))
	record, err = repo.GetByChat(chat)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestDeleteTokenOnlyMatchesCurrentToken(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()
	chat := "237670000000@s.whatsapp.net"

	require.NoError(t, repo.Save(&SessionRecord{
		ChatJID: chat, Token: "tok-new", UserID: "u1", UserName: "Awa", Role: "user",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	deleted, err := repo.DeleteToken(chat, "tok-old")
	require.NoError(t, err)
	assert.False(t, deleted)

	record, err := repo.GetByChat(chat)
	require.NoError(t, err)
	require.NotNil(t, record)

	deleted, err = repo.DeleteToken(chat, "tok-new")
	require.NoError(t, err)
	assert.True(t, deleted)

	record, err = repo.GetByChat(chat)
	require.NoError(t, err)
	assert.Nil(t, record)
}
