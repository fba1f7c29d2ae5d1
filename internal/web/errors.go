package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to admins as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX, JSON, or HTML)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), optionally with an explicit status
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/session"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// ErrorResponse represents the JSON structure for error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and answers with its user message. GET requests get
// a "Try Again" action that re-issues the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusFor(err))
}

func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	switch {
	case isHTMX(r):
		retry := ""
		if r.Method == http.MethodGet {
			retry = r.URL.RequestURI()
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorAlert(msg.Message, msg.Action, msg.Code, retry).Render(r.Context(), w)
	case wantsJSON(r):
		respondErrorJSON(w, msg, status)
	default:
		respondErrorHTML(w, msg, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML writes a plain error response.
func respondErrorHTML(w http.ResponseWriter, msg core.UserMessage, status int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", status)
}

// statusFor picks the response status for err.
func statusFor(err error) int {
	var fe core.FieldErrors
	if errors.As(err, &fe) {
		return http.StatusUnprocessableEntity
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Kind != api.KindStatus:
			return http.StatusBadGateway
		case apiErr.Status == http.StatusUnauthorized,
			apiErr.Status == http.StatusForbidden,
			apiErr.Status == http.StatusNotFound:
			return apiErr.Status
		case apiErr.Status >= 500:
			return http.StatusBadGateway
		default:
			// Other 4xx and 2xx bodies with status false.
			return http.StatusUnprocessableEntity
		}
	}

	switch {
	case errors.Is(err, api.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrNoFile), errors.Is(err, core.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
