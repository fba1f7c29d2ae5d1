// Package web provides the HTTP server and handlers for the admin dashboard.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/config"
	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/session"
	"github.com/JonMunkholm/solaradmin/internal/table"
	"github.com/JonMunkholm/solaradmin/internal/web/middleware"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

//go:embed static
var staticFiles embed.FS

// Deps are the collaborators the server is built from.
type Deps struct {
	Config   *config.Config
	Client   *api.Client
	Sessions *session.Manager
	Audit    *core.AuditService // nil without a database
	Limiter  *core.UploadLimiter
}

// Server is the HTTP server for the admin dashboard.
type Server struct {
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	client   *api.Client
	auth     *api.Auth
	uploads  *api.Uploads
	sessions *session.Manager
	audit    *core.AuditService
	limiter  *core.UploadLimiter
	entities map[string]entityHandler
	now      func() time.Time
}

// NewServer creates a new Server instance.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		router:   chi.NewRouter(),
		client:   d.Client,
		auth:     api.NewAuth(d.Client, d.Config.API.LoginPath, d.Config.API.MePath),
		uploads:  api.NewUploads(d.Client, d.Config.API.UploadField),
		sessions: d.Sessions,
		audit:    d.Audit,
		limiter:  d.Limiter,
		entities: make(map[string]entityHandler),
		now:      time.Now,
	}
	if s.limiter == nil {
		s.limiter = core.NewUploadLimiter(d.Config.Upload.MaxConcurrent, d.Config.Upload.MaxWaitTime)
	}
	s.bindEntities()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.RateLimit(middleware.PerMinute(s.cfg.Rate.RequestsPerMinute), s.rateLimited))
	}

	s.router.Use(s.sessions.Hydrate)
	s.router.Use(middleware.CSRF(s.cfg.Security.EnableCSRF, s.cfg.Session.Secure, s.csrfFailed))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/healthz", s.handleHealth)

	fallback := http.HandlerFunc(s.handleFallback)

	s.router.Group(func(r chi.Router) {
		r.Use(session.GuestOnly(fallback, "/"))
		if s.cfg.Rate.Enabled {
			r.Use(middleware.RateLimit(middleware.PerMinute(s.cfg.Rate.LoginPerMinute), s.rateLimited))
		}
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
	})
	s.router.Post("/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(session.RequireAdmin(fallback, "/login"))

		r.Get("/", s.handleDashboard)
		r.Post("/uploads/{kind}", s.handleUpload)

		r.Route("/audit-log", func(r chi.Router) {
			r.Get("/", s.handleAuditLog)
			r.Get("/table", s.handleAuditTable)
			r.Get("/export.csv", s.handleAuditExport)
			r.Get("/{id}", s.handleAuditEntry)
		})

		r.Route("/{entity}", func(r chi.Router) {
			r.Get("/", s.entityRoute(entityHandler.List))
			r.Post("/", s.entityRoute(entityHandler.Create))
			r.Get("/table", s.entityRoute(entityHandler.Table))
			r.Get("/new", s.entityRoute(entityHandler.New))
			r.Get("/{id}", s.entityRoute(entityHandler.Show))
			r.Post("/{id}", s.entityRoute(entityHandler.Update))
			r.Get("/{id}/edit", s.entityRoute(entityHandler.Edit))
			r.Post("/{id}/delete", s.entityRoute(entityHandler.Delete))
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr, "screens", len(s.entities))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if enableCSP {
				// htmx is served from unpkg; product images live on the API's CDN.
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// render writes c with status. Components render into a buffer first so a
// template failure still produces a clean error response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		s.respondErrorStatus(w, r, fmt.Errorf("render: %w", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Debug("write response", "error", err)
	}
}

// page builds the chrome shared by every signed-in page. active is the URL
// of the highlighted sidebar link.
func (s *Server) page(r *http.Request, title, active string) templates.Page {
	p := templates.Page{
		Title:     title,
		CSRFToken: middleware.CSRFToken(r.Context()),
	}
	if u, ok := s.user(r.Context()); ok {
		p.AdminName = orDefault(u.Name, u.Email)
		p.AdminRole = u.Role
	}

	p.Nav = append(p.Nav, templates.NavGroup{Links: []templates.NavLink{
		{URL: "/", Label: "Dashboard", Active: active == "/"},
	}})
	for _, g := range core.Groups() {
		group := templates.NavGroup{Name: g}
		for _, scr := range core.ByGroup(g) {
			if _, ok := s.entities[scr.Key]; !ok {
				continue
			}
			url := "/" + scr.Key
			group.Links = append(group.Links, templates.NavLink{URL: url, Label: scr.Label, Active: active == url})
		}
		if len(group.Links) > 0 {
			p.Nav = append(p.Nav, group)
		}
	}
	p.Nav = append(p.Nav, templates.NavGroup{Name: "System", Links: []templates.NavLink{
		{URL: "/audit-log", Label: "Audit log", Active: active == "/audit-log"},
	}})
	return p
}

func (s *Server) user(ctx context.Context) (session.User, bool) {
	return session.FromContext(ctx).GetUser()
}

func (s *Server) pageSizes() []int {
	if len(s.cfg.Table.PageSizes) == 0 {
		return table.DefaultPageSizes
	}
	return s.cfg.Table.PageSizes
}

// fail answers a failed API call. A rejected token ends the session.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if s.expireSession(w, r, err) {
		return
	}
	s.respondError(w, r, err)
}

// expireSession signs the admin out when the API rejected their token and
// sends them to the login page. It reports whether it handled the response.
func (s *Server) expireSession(w http.ResponseWriter, r *http.Request, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	logging.FromContext(r.Context()).Info("api rejected session token, signing out")
	if lerr := s.sessions.Logout(r.Context(), w); lerr != nil {
		logging.FromContext(r.Context()).Warn("clear expired session", "error", lerr)
	}
	session.SendRedirect(w, r, "/login")
	return true
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.respondErrorStatus(w, r, fmt.Errorf("%s %s: %w", r.Method, r.URL.Path, core.ErrNotFound), http.StatusNotFound)
}

// handleFallback renders while the session store cannot answer.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "5")
	retry := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		retry = "/"
	}
	s.render(w, r, http.StatusServiceUnavailable, templates.Fallback(retry))
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondErrorStatus(w, r, fmt.Errorf("rate limit exceeded for %s", r.RemoteAddr), http.StatusTooManyRequests)
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	s.respondErrorStatus(w, r, fmt.Errorf("csrf token mismatch: %w", session.ErrSessionNotFound), http.StatusForbidden)
}
