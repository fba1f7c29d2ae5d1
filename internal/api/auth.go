package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// User is the authenticated admin as reported by the API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AdminRoles are the roles allowed into the dashboard.
var AdminRoles = []string{"admin", "superadmin", "subadmin"}

// ErrNotAdmin is returned by Login when the credentials belong to a user
// outside the admin tier.
var ErrNotAdmin = errors.New("account is not an administrator")

// Login is the result of a successful sign-in.
type Login struct {
	Token string
	User  User
}

// Auth talks to the authentication endpoints.
type Auth struct {
	client    *Client
	loginPath string
	mePath    string
}

// NewAuth creates the auth endpoints client.
func NewAuth(c *Client, loginPath, mePath string) *Auth {
	return &Auth{client: c, loginPath: loginPath, mePath: mePath}
}

// Login exchanges credentials for a bearer token. Token issuance belongs to
// the API; the token is only carried.
func (a *Auth) Login(ctx context.Context, email, password string) (Login, error) {
	body, err := a.client.do(ctx, http.MethodPost, a.loginPath, nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Login{}, fmt.Errorf("login: %w", err)
	}

	res := gjson.ParseBytes(body)
	token := firstString(res, "data.token", "data.accessToken", "token", "accessToken")
	if token == "" {
		return Login{}, fmt.Errorf("login: %w", decodeError(http.StatusOK, errors.New("no token in response")))
	}

	user := userFrom(firstObject(res, "data.user", "data.admin", "user", "data"))
	if user.Role != "" && !isAdminRole(user.Role) {
		return Login{}, ErrNotAdmin
	}
	return Login{Token: token, User: user}, nil
}

// Me returns the user the current token belongs to.
func (a *Auth) Me(ctx context.Context) (User, error) {
	body, err := a.client.do(ctx, http.MethodGet, a.mePath, nil, nil)
	if err != nil {
		return User{}, fmt.Errorf("me: %w", err)
	}
	res := gjson.ParseBytes(body)
	return userFrom(firstObject(res, "data.user", "data", "user")), nil
}

func userFrom(res gjson.Result) User {
	return User{
		ID:    firstString(res, "id", "_id"),
		Name:  firstString(res, "name", "fullName", "username"),
		Email: res.Get("email").String(),
		Role:  strings.ToLower(res.Get("role").String()),
	}
}

func isAdminRole(role string) bool {
	for _, r := range AdminRoles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func firstString(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := res.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func firstObject(res gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := res.Get(p); v.IsObject() {
			return v
		}
	}
	return gjson.Result{}
}
