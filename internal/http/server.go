// Package http serves the FinSight pages: server-rendered HTML over the REST
// backend, with the browser session and notification slot kept server side.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finsight/internal/api"
	"finsight/internal/editor"
	"finsight/internal/log"
	"finsight/internal/middleware/ratelimit"
	"finsight/internal/middleware/security"
	"finsight/internal/middleware/trace"
	"finsight/internal/notify"
	"finsight/internal/session"
	appweb "finsight/web"
)

// ReadinessCheck probes one dependency for /readyz.
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators of the server. API, Sessions and Notifier are
// required.
type Deps struct {
	API       *api.Client
	Sessions  *session.Manager
	Notifier  *notify.Notifier
	Publisher editor.Publisher
	Logger    *log.Logger

	TopRiskyCount int
	RateLimitRPM  int
	Checks        map[string]ReadinessCheck

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
}

type Server struct {
	http.Server

	api       *api.Client
	sessions  *session.Manager
	notifier  *notify.Notifier
	publisher editor.Publisher
	logger    *log.Logger

	templates map[string]*template.Template
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	trace     *trace.Middleware
	checks    map[string]ReadinessCheck

	topRiskyCount int
	started       time.Time
	shutdownOnce  sync.Once
}

// NewServer parses the templates and builds the route table.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.API == nil || deps.Sessions == nil || deps.Notifier == nil {
		return nil, fmt.Errorf("new server: API, Sessions and Notifier are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = editor.NopPublisher
	}
	templatesFS := deps.Templates
	if templatesFS == nil {
		templatesFS = appweb.TemplatesFS
	}
	staticFS := deps.Static
	if staticFS == nil {
		sub, err := fs.Sub(appweb.StaticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("mount static assets: %w", err)
		}
		staticFS = sub
	}

	templates, err := parseTemplates(templatesFS)
	if err != nil {
		return nil, err
	}

	detector := security.NewDetector()
	s := &Server{
		api:           deps.API,
		sessions:      deps.Sessions,
		notifier:      deps.Notifier,
		publisher:     publisher,
		logger:        logger.WithComponent(log.ComponentHTTP),
		templates:     templates,
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitRPM}),
		detector:      detector,
		trace:         trace.NewMiddleware(logger, detector.ExtractClientIP, trace.WithSuspicionCheck(detector.Suspicious)),
		checks:        deps.Checks,
		topRiskyCount: deps.TopRiskyCount,
		started:       time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(staticFS),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(staticFS fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.trace.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.With(security.StaticAssets(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Use(security.NoStore)
		r.Use(s.limiter.Middleware(s.rateKey, nil))

		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/auth/redirect", s.handleAuthRedirect)
		r.Post("/notifications/dismiss", s.handleDismiss)

		r.Get("/", s.handleDashboard)
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Post("/{id}", s.handleUpdateAccount)
			r.Post("/{id}/delete", s.handleDeleteAccount)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleCategories)
			r.Post("/", s.handleCreateCategory)
			r.Post("/{id}", s.handleUpdateCategory)
			r.Post("/{id}/delete", s.handleDeleteCategory)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Post("/{id}/delete", s.handleDeleteTransaction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Page not found").Write(w)
	})
	return r
}

// rateKey limits per browser when a session exists and per address otherwise.
func (s *Server) rateKey(r *http.Request) string {
	if sess := session.FromContext(r.Context()); sess != nil {
		return "client:" + sess.ClientID()
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

// Shutdown stops the background sweeps and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
