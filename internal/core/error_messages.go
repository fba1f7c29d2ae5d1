package core

// # Error Codes Reference
//
// Every failure shown to an admin carries a code they can quote to support.
// Codes are grouped by category:
//
// # API Errors (API001-API099)
//
// Failures talking to the admin API:
//
//	API001 - Unreachable: the API did not answer (network, DNS, timeout)
//	API002 - Unauthorized: 401, the API no longer accepts the session token
//	API003 - Forbidden: 403, the account may not perform this action
//	API004 - Not found: 404, the record was deleted or never existed
//	API005 - Rejected: other 4xx; the API's own message is shown
//	API006 - Server error: 5xx
//	API007 - Unexpected response: body was not the JSON we expected
//
// # Auth Errors (AUTH001-AUTH099)
//
//	AUTH001 - Not an administrator: login succeeded for a non-admin role
//	AUTH002 - Session expired: the dashboard session is gone
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid form: one or more fields failed validation
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: every upload slot is taken
//	UPL002 - File too large
//	UPL003 - Unsupported file type
//	UPL004 - No file selected
//	UPL005 - Empty file
//	UPL006 - Request cancelled
//	UPL007 - Request timeout
//
// # Database Errors (DB001-DB099)
//
// Sessions and the audit log live in Postgres:
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Deadlock
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the original error.
//
// # Matching
//
// Typed errors (api.Error, FieldErrors and the sentinels above) are matched
// first with errors.As / errors.Is. Anything else falls through to
// case-insensitive substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/session"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgUnreachable  = UserMessage{"Unable to reach the server", "Check your connection and try again", "API001"}
	msgUnauthorized = UserMessage{"Your session is no longer valid", "Please sign in again", "API002"}
	msgForbidden    = UserMessage{"You don't have permission to do that", "Ask a super admin for access", "API003"}
	msgNotFound     = UserMessage{"That record no longer exists", "Refresh the list and try again", "API004"}
	msgRejected     = UserMessage{"The server rejected the request", "Review your input and try again", "API005"}
	msgServer       = UserMessage{"The server ran into a problem", "Please try again in a few moments", "API006"}
	msgBadResponse  = UserMessage{"The server returned an unexpected response", "Please try again or contact support", "API007"}

	msgNotAdmin       = UserMessage{"This account is not an administrator", "Sign in with an admin account", "AUTH001"}
	msgSessionExpired = UserMessage{"Your session has expired", "Please sign in again", "AUTH002"}

	msgInvalidForm = UserMessage{"Some fields need attention", "Correct the highlighted fields and submit again", "VAL001"}

	msgUploadsBusy = UserMessage{"System is busy processing other uploads", "Please wait a moment and try again", "UPL001"}
	msgTooLarge    = UserMessage{"File exceeds the maximum size", "Choose a smaller file", "UPL002"}
	msgBadType     = UserMessage{"This file type is not supported", "Upload a PNG, JPEG, WebP, GIF or PDF file", "UPL003"}
	msgNoFile      = UserMessage{"No file was selected", "Choose a file to upload", "UPL004"}
	msgEmptyFile   = UserMessage{"The uploaded file is empty", "Choose a different file", "UPL005"}
	msgCancelled   = UserMessage{"Request was cancelled", "Please try again", "UPL006"}
	msgTimeout     = UserMessage{"Request timed out", "Check your connection and try again", "UPL007"}

	msgRateLimited = UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch untyped errors, mostly from pgx. Specific patterns
// come before general ones.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB001"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB002"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB003"}},
	{"rate limit", msgRateLimited},
	{"too many requests", msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := products.Get(ctx, "missing")
//	msg := MapError(err)
//	// msg.Code == "API004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return msgInvalidForm, true
	}

	switch {
	case errors.Is(err, api.ErrNotAdmin):
		return msgNotAdmin, true
	case errors.Is(err, session.ErrSessionNotFound):
		return msgSessionExpired, true
	case errors.Is(err, ErrTooManyUploads):
		return msgUploadsBusy, true
	case errors.Is(err, ErrFileTooLarge):
		return msgTooLarge, true
	case errors.Is(err, ErrUnsupportedType):
		return msgBadType, true
	case errors.Is(err, ErrNoFile):
		return msgNoFile, true
	case errors.Is(err, ErrEmptyFile):
		return msgEmptyFile, true
	case errors.Is(err, ErrNotFound):
		return msgNotFound, true
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return mapAPI(apiErr), true
	}

	switch {
	case errors.Is(err, context.Canceled):
		return msgCancelled, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	}
	return UserMessage{}, false
}

func mapAPI(e *api.Error) UserMessage {
	switch e.Kind {
	case api.KindTransport:
		return msgUnreachable
	case api.KindDecode:
		return msgBadResponse
	}

	switch {
	case e.Status == http.StatusUnauthorized:
		return msgUnauthorized
	case e.Status == http.StatusForbidden:
		return msgForbidden
	case e.Status == http.StatusNotFound:
		return msgNotFound
	case e.Status == http.StatusTooManyRequests:
		return msgRateLimited
	case e.Status >= 500:
		return msgServer
	}

	// The API explains its own 4xx rejections; show that text.
	msg := msgRejected
	if e.Message != "" {
		msg.Message = e.Message
	}
	return msg
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
