package server

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/render"
	"github.com/claude/onerm/internal/share"
	"github.com/claude/onerm/internal/storage"
)

//go:embed templates/index.html
var templates embed.FS

// Options configures a Server.
type Options struct {
	// BaseURL is the public address share links are built on. When nil the
	// request's own scheme and host are used.
	BaseURL       *url.URL
	DefaultLocale calc.Locale
	Links         render.Links
	Cards         share.CardOptions
	ShareLimit    rate.Limit
	ShareBurst    int
	// SessionIdle and MaxSessions bound the calculators held in memory.
	SessionIdle time.Duration
	MaxSessions int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	opts     Options
	sessions *sessions
	limiter  *IPRateLimiter
	page     *template.Template
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured. Calculator state is
// persisted through kv, one namespace per browser session.
func New(kv storage.KV, opts Options, log *slog.Logger) *Server {
	if _, ok := calc.ParseLocale(string(opts.DefaultLocale)); !ok {
		opts.DefaultLocale = calc.DefaultLocale
	}
	if opts.ShareLimit == 0 {
		opts.ShareLimit = rate.Limit(0.5)
	}
	if opts.ShareBurst == 0 {
		opts.ShareBurst = 5
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = 24 * time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10000
	}
	s := &Server{
		opts:     opts,
		sessions: newSessions(kv, opts.DefaultLocale, opts.SessionIdle, opts.MaxSessions, log),
		limiter:  NewIPRateLimiter(opts.ShareLimit, opts.ShareBurst),
		page:     template.Must(template.ParseFS(templates, "templates/index.html")),
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Page and no-script form fallback
	s.router.Get("/", s.handlePage)
	s.router.Post("/form", s.handleForm)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/events/{event}", s.handleEvent)
		r.Post("/theme/toggle", s.handleToggleTheme)
		r.Post("/status", s.handleReportStatus)
		r.Delete("/status", s.handleDismissStatus)
		r.Get("/estimate", s.handleEstimate)
		r.Get("/precache", s.handlePrecache)

		// Artifact generation is comparatively expensive
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Limit)
			r.Post("/share", s.handleShare)
			r.Get("/export/{format}", s.handleExport)
			r.Post("/batch", s.handleBatch)
		})
	})
}

// MountMCP serves an MCP transport at /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetStatic mounts static assets (styles, images) under /static/.
func (s *Server) SetStatic(staticFS fs.FS) {
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
}

// baseURL returns the address share links are built on.
func (s *Server) baseURL(r *http.Request) *url.URL {
	if s.opts.BaseURL != nil {
		return s.opts.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}
}
