// Package session keeps the backend session id across runs.
//
// The id is stored in plain text in a local sqlite file, one row per scope.
// Anyone who can read the file can act as the user until the backend expires
// the session. This mirrors the reload-surviving storage the backend
// contract expects and is not meant as secret storage.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/drive-summarizer/internal/logging"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    scope      TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT ''
);
`

// DefaultScope is used when no profile is given.
const DefaultScope = "default"

// Authenticator exchanges an authorization code for a session id.
type Authenticator interface {
	Login(ctx context.Context, authCode string) (string, error)
}

// Session is an authenticated backend session.
type Session struct {
	ID        string
	CreatedAt time.Time
}

// Store holds the current session of one scope, persisted in sqlite.
type Store struct {
	db    *sql.DB
	scope string

	mu       sync.Mutex
	current  *Session
	teardown []func()
}

// Open opens (or creates) the database at dbPath and loads the session
// stored for scope, if any.
func Open(dbPath, scope string) (*Store, error) {
	if scope == "" {
		scope = DefaultScope
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &Store{db: db, scope: scope}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func (s *Store) load() error {
	var id, created string
	err := s.db.QueryRow(
		"SELECT session_id, created_at FROM sessions WHERE scope = ?",
		s.scope,
	).Scan(&id, &created)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	sess := &Session{ID: id}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		sess.CreatedAt = t
	}
	s.current = sess
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Scope returns the scope this store reads and writes.
func (s *Store) Scope() string {
	return s.scope
}

// Login exchanges authCode through auth and persists the resulting session.
// Errors from auth are returned unchanged so callers can detect
// *apperr.AuthError.
func (s *Store) Login(ctx context.Context, auth Authenticator, authCode string) (Session, error) {
	id, err := auth.Login(ctx, authCode)
	if err != nil {
		return Session{}, err
	}

	sess := Session{ID: id, CreatedAt: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (scope, session_id, created_at) VALUES (?, ?, ?)",
		s.scope, sess.ID, sess.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	logging.Info("session stored", zap.String("scope", s.scope))
	return sess, nil
}

// Current returns the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// OnLogout registers fn to run on every Logout, after the session is gone.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown = append(s.teardown, fn)
}

// Logout forgets the session, both on disk and in memory, and runs the
// registered teardown hooks.
func (s *Store) Logout() error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE scope = ?", s.scope); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	hooks := append([]func(){}, s.teardown...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	logging.Info("logged out", zap.String("scope", s.scope))
	return nil
}

// Scopes lists every scope with a stored session.
func (s *Store) Scopes() ([]string, error) {
	rows, err := s.db.Query("SELECT scope FROM sessions ORDER BY scope")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var sc string
		if err := rows.Scan(&sc); err != nil {
			return nil, err
		}
		scopes = append(scopes, sc)
	}
	return scopes, rows.Err()
}
