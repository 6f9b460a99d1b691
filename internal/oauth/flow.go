// Package oauth obtains a Google authorization code through a loopback
// redirect. The code is handed to the backend, which performs the token
// exchange; this package never sees tokens.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/Zuo-Peng/drive-summarizer/internal/logging"
)

// DefaultScopes are the scopes the backend needs to list and read Drive files.
var DefaultScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/drive.readonly",
}

var (
	// ErrCancelled is returned when the user declines consent.
	ErrCancelled = errors.New("login cancelled")
	// ErrStateMismatch is returned for a redirect that did not originate
	// from this flow.
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// Config describes the OAuth client registered for the backend.
type Config struct {
	ClientID     string
	ClientSecret string
	ListenAddr   string // host:port the redirect URI points at
	Scopes       []string
}

// Flow is one authorization attempt.
type Flow struct {
	oauth      *oauth2.Config
	state      string
	listenAddr string
}

type callbackResult struct {
	code string
	err  error
}

// NewFlow prepares an authorization attempt with a fresh state value.
func NewFlow(cfg Config) *Flow {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &Flow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoints.Google,
			RedirectURL:  "http://" + cfg.ListenAddr,
			Scopes:       scopes,
		},
		state:      uuid.NewString(),
		listenAddr: cfg.ListenAddr,
	}
}

// AuthURL returns the consent page address.
func (f *Flow) AuthURL() string {
	return f.oauth.AuthCodeURL(f.state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Run serves the redirect target, opens the consent page with launch and
// waits for the code. If launch fails the address is passed to notify so
// the user can open it by hand.
func (f *Flow) Run(ctx context.Context, launch func(string) error, notify func(string)) (string, error) {
	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", f.listenAddr, err)
	}

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           f.handler(results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	u := f.AuthURL()
	if err := launch(u); err != nil {
		logging.Warn("could not open browser", zap.Error(err))
		notify(u)
	}

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// handler answers the provider redirect and reports the first outcome.
func (f *Flow) handler(results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("code") == "" && q.Get("error") == "" {
			http.NotFound(w, r)
			return
		}

		var res callbackResult
		switch {
		case q.Get("state") != f.state:
			res.err = ErrStateMismatch
		case q.Get("error") == "access_denied":
			res.err = ErrCancelled
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization failed: %s", q.Get("error"))
		default:
			res.code = q.Get("code")
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if res.err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Login failed: %v\n", res.err)
		} else {
			fmt.Fprintln(w, "Login complete. You can close this window and return to the terminal.")
		}

		select {
		case results <- res:
		default:
		}
	})
}
