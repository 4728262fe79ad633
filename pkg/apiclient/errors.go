package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidBaseURL indicates the client was constructed with an
	// unusable base URL.
	ErrInvalidBaseURL = errors.New("apiclient.invalid_base_url")
)

// NetworkError indicates no response reached the client: connection refused,
// DNS failure, timeout, or a broken response stream.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("no response received: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError indicates the server answered with a status outside the success
// range. Body holds the raw response; Message holds the server-supplied
// human-readable message when the body carried one.
type HTTPError struct {
	Status  int
	Body    []byte
	Message string
}

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{Status: status, Body: body}

	// Every error body this API produces is {"message": "..."}.
	var envelope struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		e.Message = envelope.Message
	}
	return e
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected request: status %d", e.Status)
}

// IsAuthFailure reports whether the server rejected the credential itself.
func (e *HTTPError) IsAuthFailure() bool {
	return e.Status == 401 || e.Status == 403
}

// AsHTTPError extracts an *HTTPError from an error chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// ErrorMessage returns the server-supplied message carried by err when there
// is one, and fallback otherwise. Controllers use it to turn request
// failures into the transient messages they show.
func ErrorMessage(err error, fallback string) string {
	if httpErr := AsHTTPError(err); httpErr != nil && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
