// Package apperr defines the user-facing failure taxonomy shared by the
// backend client, the session store and the summary coordinator.
package apperr

import "errors"

// AuthError reports a rejected login exchange.
type AuthError struct {
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return "login failed: " + e.Detail
	}
	if e.Err != nil {
		return "login failed: " + e.Err.Error()
	}
	return "login failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

// SessionExpiredError reports that the backend no longer accepts the session id.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	return "session expired, please log in again"
}

func (e *SessionExpiredError) Unwrap() error { return e.Err }

// FetchError reports a failed folder listing.
type FetchError struct {
	FolderID string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return "failed to load files: " + e.Err.Error()
	}
	return "failed to load files"
}

func (e *FetchError) Unwrap() error { return e.Err }

// GenericSummarizationMessage is shown when the server gave no detail.
const GenericSummarizationMessage = "failed to summarize file"

// SummarizationError reports a failed summarization. Detail carries the
// server-provided message when there was one.
type SummarizationError struct {
	FileID string
	Detail string
	Err    error
}

func (e *SummarizationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return GenericSummarizationMessage
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// IsAuth reports whether err is or wraps an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsSessionExpired reports whether err is or wraps a SessionExpiredError.
func IsSessionExpired(err error) bool {
	var target *SessionExpiredError
	return errors.As(err, &target)
}

// IsFetch reports whether err is or wraps a FetchError.
func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// AsSummarization extracts a SummarizationError from err.
func AsSummarization(err error) (*SummarizationError, bool) {
	var target *SummarizationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
