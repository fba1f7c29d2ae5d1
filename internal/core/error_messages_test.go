package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/session"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "transport failure",
			err:         fmt.Errorf("list products: %w", &api.Error{Kind: api.KindTransport, Message: "Unable to reach the server"}),
			wantCode:    "API001",
			wantMessage: "Unable to reach the server",
		},
		{
			name:        "unauthorized",
			err:         &api.Error{Kind: api.KindStatus, Status: 401, Message: "jwt expired"},
			wantCode:    "API002",
			wantMessage: "Your session is no longer valid",
		},
		{
			name:        "not found",
			err:         fmt.Errorf("get brand: %w", &api.Error{Kind: api.KindStatus, Status: 404}),
			wantCode:    "API004",
			wantMessage: "That record no longer exists",
		},
		{
			name:        "missing audit entry",
			err:         fmt.Errorf("audit entry 42: %w", ErrNotFound),
			wantCode:    "API004",
			wantMessage: "That record no longer exists",
		},
		{
			name:        "rejection shows the API message",
			err:         &api.Error{Kind: api.KindStatus, Status: 409, Message: "Coupon code already exists"},
			wantCode:    "API005",
			wantMessage: "Coupon code already exists",
		},
		{
			name:        "status false envelope on 200",
			err:         &api.Error{Kind: api.KindStatus, Status: 200, Message: "Brand is in use"},
			wantCode:    "API005",
			wantMessage: "Brand is in use",
		},
		{
			name:        "rejection without message",
			err:         &api.Error{Kind: api.KindStatus, Status: 400},
			wantCode:    "API005",
			wantMessage: "The server rejected the request",
		},
		{
			name:        "server error",
			err:         &api.Error{Kind: api.KindStatus, Status: 502, Message: "Request failed: Bad Gateway"},
			wantCode:    "API006",
			wantMessage: "The server ran into a problem",
		},
		{
			name:        "decode failure",
			err:         &api.Error{Kind: api.KindDecode, Status: 200},
			wantCode:    "API007",
			wantMessage: "The server returned an unexpected response",
		},
		{
			name:        "non-admin login",
			err:         fmt.Errorf("login: %w", api.ErrNotAdmin),
			wantCode:    "AUTH001",
			wantMessage: "This account is not an administrator",
		},
		{
			name:        "session gone",
			err:         session.ErrSessionNotFound,
			wantCode:    "AUTH002",
			wantMessage: "Your session has expired",
		},
		{
			name:        "field errors",
			err:         FieldErrors{"name": "is required"},
			wantCode:    "VAL001",
			wantMessage: "Some fields need attention",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("%w: limit is 10MB", ErrFileTooLarge),
			wantCode:    "UPL002",
			wantMessage: "File exceeds the maximum size",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("write audit: %w", context.DeadlineExceeded),
			wantCode:    "UPL007",
			wantMessage: "Request timed out",
		},
		{
			name:        "database pattern",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "DB001",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("RATE LIMIT exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyUploads)

	expected := "System is busy processing other uploads (Code: UPL001). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"api error is user facing", &api.Error{Kind: api.KindStatus, Status: 404}, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := fmt.Errorf("delete coupon: %w", &api.Error{Kind: api.KindStatus, Status: 403})
	userErr := NewUserError(techErr)

	if userErr.Error() != "You don't have permission to do that" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, techErr) {
		t.Error("Unwrap() should return original error")
	}
}
