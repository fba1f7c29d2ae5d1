package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/session"
	"github.com/JonMunkholm/solaradmin/internal/web/middleware"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// dashboardConcurrency caps the count requests the dashboard sends at once.
const dashboardConcurrency = 4

// handleDashboard renders one card per screen with its record count.
// Each card fails on its own; a dead endpoint does not blank the page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var handlers []entityHandler
	for _, scr := range core.All() {
		if h, ok := s.entities[scr.Key]; ok {
			handlers = append(handlers, h)
		}
	}

	cards := make([]templates.DashboardCard, len(handlers))
	errs := make([]error, len(handlers))

	var g errgroup.Group
	g.SetLimit(dashboardConcurrency)
	for i, h := range handlers {
		scr := h.Screen()
		cards[i] = templates.DashboardCard{URL: "/" + scr.Key, Label: scr.Label, Group: scr.Group}
		g.Go(func() error {
			n, err := h.Count(r.Context())
			if err != nil {
				errs[i] = err
				cards[i].Error = core.MapError(err).Message
				return nil
			}
			cards[i].Total = n
			return nil
		})
	}
	g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if s.expireSession(w, r, err) {
			return
		}
		logging.FromContext(r.Context()).Warn("dashboard count failed", "entity", handlers[i].Screen().Key, "error", err)
	}

	s.render(w, r, http.StatusOK, templates.Layout(s.page(r, "Dashboard", "/"), templates.Dashboard(cards)))
}

// handleHealth reports liveness and upload slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"screens": len(s.entities),
		"audit":   s.audit != nil,
		"uploads": s.limiter.Status(),
	}
	// Only the in-memory store can count cheaply.
	if c, ok := s.sessions.Store().(interface{ Len() int }); ok {
		body["sessions"] = c.Len()
	}
	writeJSON(w, http.StatusOK, body)
}

// loginInput is the sign-in form.
type loginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.LoginPage(templates.LoginParams{
		CSRFToken: middleware.CSRFToken(r.Context()),
		Next:      safeNext(r.URL.Query().Get("next")),
	}))
}

// handleLogin exchanges credentials for an API token and starts a session.
// Failures re-render the form in place and keep the email.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest)
		return
	}

	in := loginInput{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	p := templates.LoginParams{
		Email:     in.Email,
		CSRFToken: middleware.CSRFToken(r.Context()),
		Next:      safeNext(r.PostForm.Get("next")),
	}
	log := logging.FromContext(r.Context())

	if fe := core.Validate(in); fe != nil {
		p.Errors = fe
		s.loginForm(w, r, http.StatusUnprocessableEntity, p)
		return
	}

	login, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		status := statusFor(err)
		switch {
		case errors.Is(err, api.ErrNotAdmin):
			p.Error = core.MapError(err).Message
		case api.IsStatus(err, http.StatusUnauthorized), api.IsStatus(err, http.StatusBadRequest), api.IsStatus(err, http.StatusNotFound):
			p.Error = "Invalid email or password"
			status = http.StatusUnauthorized
		default:
			msg := core.MapError(err)
			p.Error = msg.Message + ". " + msg.Action
		}
		log.Warn("login failed", "email", in.Email, "status", status, "error", err)
		s.loginForm(w, r, status, p)
		return
	}

	user := session.User{ID: login.User.ID, Name: login.User.Name, Email: login.User.Email, Role: login.User.Role}
	if _, err := s.sessions.Login(r.Context(), w, login.Token, user); err != nil {
		log.Error("start session", "error", err)
		p.Error = core.MapError(err).Message
		s.loginForm(w, r, http.StatusServiceUnavailable, p)
		return
	}

	log.Info("admin signed in", "admin_id", user.ID, "role", user.Role)
	s.record(r.Context(), core.ActionLogin, "session", user.ID, "Signed in as "+user.Email)
	session.SendRedirect(w, r, orDefault(p.Next, "/"))
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request, status int, p templates.LoginParams) {
	if isHTMX(r) {
		s.render(w, r, status, templates.LoginForm(p))
		return
	}
	s.render(w, r, status, templates.LoginPage(p))
}

// handleLogout ends the session. It is safe to call without one.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := s.user(r.Context()); ok {
		s.record(r.Context(), core.ActionLogout, "session", u.ID, "Signed out "+u.Email)
	}
	if err := s.sessions.Logout(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("logout", "error", err)
	}
	session.SendRedirect(w, r, "/login")
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

// writeJSON encodes v as JSON with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("json encode", "error", err)
	}
}
