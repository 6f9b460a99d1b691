// Package backend is the HTTP client for the summarizer backend: login
// exchange, profile, folder listing and summarization.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/drive-summarizer/internal/apperr"
	"github.com/Zuo-Peng/drive-summarizer/internal/drive"
	"github.com/Zuo-Peng/drive-summarizer/internal/logging"
)

// Client talks to the backend over JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Profile is the signed-in user.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

type loginRequest struct {
	AuthCode string `json:"authCode"`
}

type loginResponse struct {
	SessionID string `json:"sessionId"`
}

type listRequest struct {
	SessionID string `json:"sessionId"`
	FolderID  string `json:"folderId,omitempty"`
}

type summarizeRequest struct {
	SessionID string `json:"sessionId"`
	FileID    string `json:"fileId"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mimeType"`
}

type summarizeResponse struct {
	SummaryText string `json:"summaryText"`
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges an OAuth authorization code for a session id.
func (c *Client) Login(ctx context.Context, authCode string) (string, error) {
	var out loginResponse
	status, detail, err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{AuthCode: authCode}, &out)
	if err != nil {
		return "", &apperr.AuthError{Err: err}
	}
	if status != http.StatusOK {
		if detail == "" {
			detail = fmt.Sprintf("server returned %d", status)
		}
		return "", &apperr.AuthError{Detail: detail}
	}
	if out.SessionID == "" {
		return "", &apperr.AuthError{Detail: "no session id in response"}
	}
	logging.Info("login exchange succeeded")
	return out.SessionID, nil
}

// Profile fetches the user behind sessionID. A rejected session yields
// *apperr.SessionExpiredError.
func (c *Client) Profile(ctx context.Context, sessionID string) (*Profile, error) {
	var out Profile
	path := "/auth/me?sessionId=" + url.QueryEscape(sessionID)
	status, detail, err := c.do(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	switch {
	case sessionRejected(status):
		return nil, &apperr.SessionExpiredError{Err: statusError(status, detail)}
	case status != http.StatusOK:
		return nil, fmt.Errorf("fetch profile: %w", statusError(status, detail))
	}
	return &out, nil
}

// ListFiles lists one folder; an empty folderID lists the drive root.
// Failures are returned as *apperr.FetchError.
func (c *Client) ListFiles(ctx context.Context, sessionID, folderID string) ([]drive.FileEntry, error) {
	var out []drive.FileEntry
	status, detail, err := c.do(ctx, http.MethodPost, "/drive/files", listRequest{SessionID: sessionID, FolderID: folderID}, &out)
	if err != nil {
		return nil, &apperr.FetchError{FolderID: folderID, Err: err}
	}
	switch {
	case sessionRejected(status):
		return nil, &apperr.FetchError{FolderID: folderID, Err: &apperr.SessionExpiredError{Err: statusError(status, detail)}}
	case status != http.StatusOK:
		return nil, &apperr.FetchError{FolderID: folderID, Err: statusError(status, detail)}
	}
	logging.Debug("listed folder", zap.String("folder_id", folderID), zap.Int("files", len(out)))
	return out, nil
}

// Summarize requests a summary of one file. Failures are returned as
// *apperr.SummarizationError carrying the server detail when present.
func (c *Client) Summarize(ctx context.Context, sessionID, fileID, filename, mimeType string) (string, error) {
	req := summarizeRequest{
		SessionID: sessionID,
		FileID:    fileID,
		Filename:  filename,
		MimeType:  mimeType,
	}
	var out summarizeResponse
	status, detail, err := c.do(ctx, http.MethodPost, "/summarize", req, &out)
	if err != nil {
		return "", &apperr.SummarizationError{FileID: fileID, Err: err}
	}
	switch {
	case sessionRejected(status):
		return "", &apperr.SummarizationError{FileID: fileID, Detail: detail, Err: &apperr.SessionExpiredError{Err: statusError(status, detail)}}
	case status != http.StatusOK:
		return "", &apperr.SummarizationError{FileID: fileID, Detail: detail, Err: statusError(status, detail)}
	}
	return out.SummaryText, nil
}

// Ping checks that the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}

// do sends body as JSON and decodes a 200 response into out. Non-200
// responses return their status and the error detail from the body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, string, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", stripQuery(path)),
			zap.Error(err))
		return 0, "", err
	}
	defer resp.Body.Close()

	logging.Debug("backend request",
		zap.String("method", method),
		zap.String("path", stripQuery(path)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return resp.StatusCode, errorDetail(data), nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, "", nil
}

// errorDetail extracts the message of a FastAPI ({"detail": ...}) or
// slowapi ({"error": ...}) error body.
func errorDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		// validation errors carry a list of objects
		return string(body.Detail)
	}
	return body.Error
}

// sessionRejected reports whether status means the backend no longer
// accepts the session id. Every session-bearing call uses the same set.
func sessionRejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func statusError(status int, detail string) error {
	if detail != "" {
		return fmt.Errorf("server returned %d: %s", status, detail)
	}
	return fmt.Errorf("server returned %d", status)
}

// stripQuery keeps session ids out of the logs.
func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
