// Package apierr defines the failure variants the booking backend transport
// hands to the rest of the service. Raw transport errors never leave the
// backend package untranslated.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedResponse marks a backend response that failed shape validation.
var ErrMalformedResponse = errors.New("malformed backend response")

// ValidationFailure is an input error caught before any request is sent.
type ValidationFailure struct {
	Message string
	Fields  map[string]string
	// GuestErrors holds one entry per guest input; empty means valid.
	GuestErrors []string
}

func (e *ValidationFailure) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// TransportFailure is a non-2xx response from the backend.
type TransportFailure struct {
	Status     int
	StatusText string
	// ServerError and ServerMessage are the structured `error` and `message`
	// fields of the response body, when present.
	ServerError   string
	ServerMessage string
}

func (e *TransportFailure) Error() string {
	msg := e.ServerError
	if msg == "" {
		msg = e.ServerMessage
	}
	if msg == "" {
		msg = e.StatusText
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, msg)
}

// UnknownFailure wraps anything else: network errors, decoding errors,
// responses that failed shape validation.
type UnknownFailure struct {
	Err error
	// Network is set when no response was received at all.
	Network bool
}

func (e *UnknownFailure) Error() string {
	if e.Err == nil {
		return "unknown failure"
	}
	return e.Err.Error()
}

func (e *UnknownFailure) Unwrap() error { return e.Err }

// Malformed wraps a shape-validation error as a fail-closed UnknownFailure.
func Malformed(what string, err error) error {
	return &UnknownFailure{Err: fmt.Errorf("%w: %s: %v", ErrMalformedResponse, what, err)}
}

// Message picks the user-facing text for err: structured server error, then
// structured server message, then HTTP status text, then the error text, then
// fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var tf *TransportFailure
	if errors.As(err, &tf) {
		if s := strings.TrimSpace(tf.ServerError); s != "" {
			return s
		}
		if s := strings.TrimSpace(tf.ServerMessage); s != "" {
			return s
		}
		if s := strings.TrimSpace(tf.StatusText); s != "" {
			return s
		}
		if s := http.StatusText(tf.Status); s != "" {
			return s
		}
	}
	var vf *ValidationFailure
	if errors.As(err, &vf) && vf.Message != "" {
		return vf.Message
	}
	if s := strings.TrimSpace(err.Error()); s != "" {
		return s
	}
	return fallback
}

// Status returns the backend HTTP status carried by err, or 0.
func Status(err error) int {
	var tf *TransportFailure
	if errors.As(err, &tf) {
		return tf.Status
	}
	return 0
}

// IsAuth reports a 401 from the backend.
func IsAuth(err error) bool {
	return Status(err) == http.StatusUnauthorized
}

// IsNetwork reports a request that never got a response.
func IsNetwork(err error) bool {
	var uf *UnknownFailure
	return errors.As(err, &uf) && uf.Network
}

// IsValidation reports a client-side validation failure.
func IsValidation(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}
