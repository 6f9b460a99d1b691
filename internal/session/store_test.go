package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
)

type fakeAuth struct {
	codes map[string]string
}

func (f fakeAuth) Login(_ context.Context, code string) (string, error) {
	if id, ok := f.codes[code]; ok {
		return id, nil
	}
	return "", &apperr.AuthError{Detail: "invalid_grant"}
}

func newTestStore(t *testing.T, dbPath, scope string) *Store {
	t.Helper()
	s, err := Open(dbPath, scope)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_LoginPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dsum.db")
	auth := fakeAuth{codes: map[string]string{"abc": "s1"}}

	s := newTestStore(t, dbPath, "")
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, DefaultScope, s.Scope())

	sess, err := s.Login(context.Background(), auth, "abc")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "s1", cur.ID)
	require.NoError(t, s.Close())

	reopened := newTestStore(t, dbPath, DefaultScope)
	cur, ok = reopened.Current()
	require.True(t, ok)
	assert.Equal(t, "s1", cur.ID)
	assert.False(t, cur.CreatedAt.IsZero())
}

func TestStore_RejectedLoginKeepsState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dsum.db")
	s := newTestStore(t, dbPath, "")

	_, err := s.Login(context.Background(), fakeAuth{}, "bad")
	require.Error(t, err)
	assert.True(t, apperr.IsAuth(err))

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestStore_LogoutClearsAndRunsHooks(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dsum.db")
	s := newTestStore(t, dbPath, "")
	_, err := s.Login(context.Background(), fakeAuth{codes: map[string]string{"abc": "s1"}}, "abc")
	require.NoError(t, err)

	ran := 0
	s.OnLogout(func() { ran++ })
	s.OnLogout(func() { ran++ })

	require.NoError(t, s.Logout())
	assert.Equal(t, 2, ran)
	_, ok := s.Current()
	assert.False(t, ok)

	other := newTestStore(t, dbPath, "")
	_, ok = other.Current()
	assert.False(t, ok, "logout must clear the persisted id")
}

func TestStore_ScopesAreIndependent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dsum.db")
	auth := fakeAuth{codes: map[string]string{"a": "sa", "b": "sb"}}

	work := newTestStore(t, dbPath, "work")
	home := newTestStore(t, dbPath, "home")

	_, err := work.Login(context.Background(), auth, "a")
	require.NoError(t, err)
	_, err = home.Login(context.Background(), auth, "b")
	require.NoError(t, err)

	scopes, err := work.Scopes()
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, scopes)

	require.NoError(t, work.Logout())
	cur, ok := home.Current()
	require.True(t, ok)
	assert.Equal(t, "sb", cur.ID)
}
