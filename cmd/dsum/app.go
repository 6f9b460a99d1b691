package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
	"github.com/Zuo-Peng/drive-summarizer/internal/backend"
	"github.com/Zuo-Peng/drive-summarizer/internal/config"
	"github.com/Zuo-Peng/drive-summarizer/internal/logging"
	"github.com/Zuo-Peng/drive-summarizer/internal/session"
	"github.com/Zuo-Peng/drive-summarizer/internal/tui"
)

// app bundles what every command needs: config, logger, backend client and
// the session of the selected profile.
type app struct {
	cfg      *config.Config
	backend  *backend.Client
	sessions *session.Store
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     "json",
		OutputPath: cfg.LogPath,
	}); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	store, err := session.Open(cfg.DBPath, profile)
	if err != nil {
		return nil, err
	}

	logging.Debug("starting",
		zap.String("profile", profile),
		zap.String("backend", cfg.BackendURL))

	return &app{
		cfg: cfg,
		backend: backend.New(backend.Config{
			BaseURL: cfg.BackendURL,
			Timeout: cfg.RequestTimeout.Duration,
		}),
		sessions: store,
	}, nil
}

func (a *app) close() {
	a.sessions.Close()
	logging.Sync()
}

func (a *app) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout.Duration)
}

// requireSession returns the stored session or the not-logged-in error.
func (a *app) requireSession() (session.Session, error) {
	s, ok := a.sessions.Current()
	if !ok {
		return session.Session{}, tui.ErrNotLoggedIn
	}
	return s, nil
}

// expire clears the stored session when err says the backend dropped it.
func (a *app) expire(err error) error {
	if apperr.IsSessionExpired(err) {
		if lerr := a.sessions.Logout(); lerr != nil {
			logging.Warn("logout after expiry", zap.Error(lerr))
		}
	}
	return err
}
