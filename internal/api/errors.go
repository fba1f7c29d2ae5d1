package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed call to the remote API.
type Kind string

const (
	// KindTransport is a network failure: no response was received.
	KindTransport Kind = "transport"
	// KindStatus is a non-2xx response.
	KindStatus Kind = "status"
	// KindDecode is a response body that is not the expected JSON.
	KindDecode Kind = "decode"
)

// Error is the single error type every Client call returns. Message is
// always safe to show to an admin.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api %s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindStatus && apiErr.Status == status
}

// IsUnauthorized reports whether the remote API rejected the bearer token.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func transportError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: "Unable to reach the server",
		Err:     err,
	}
}

func decodeError(status int, err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Status:  status,
		Message: "The server returned an unexpected response",
		Err:     err,
	}
}

// statusError builds the error for a non-2xx response, preferring the
// message the API put in the body.
func statusError(status int, body []byte) *Error {
	msg := bodyMessage(body)
	if msg == "" {
		msg = statusText(status)
	}
	return &Error{Kind: KindStatus, Status: status, Message: msg}
}

// bodyMessage extracts a human-readable message from an error body.
// Recognised shapes: {"message": ...}, {"error": "..."}, {"error": {"message": ...}},
// {"msg": ...} and a message array from validation pipes.
func bodyMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.ParseBytes(body)
	for _, path := range []string{"message", "error.message", "error", "msg", "data.message"} {
		v := res.Get(path)
		switch {
		case v.Type == gjson.String && strings.TrimSpace(v.String()) != "":
			return strings.TrimSpace(v.String())
		case v.IsArray():
			var parts []string
			for _, item := range v.Array() {
				if item.Type == gjson.String {
					parts = append(parts, item.String())
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return ""
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return "Request failed: " + text
	}
	return fmt.Sprintf("Request failed with status %d", status)
}
