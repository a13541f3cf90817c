package httpx

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"

	portal "github.com/mpo-id/portal"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/authz"
	"github.com/mpo-id/portal/internal/observability/metrics"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Handlers *Handlers
	Access   Authorizer

	// Metrics records request latency. A nil recorder is a no-op.
	Metrics *metrics.Recorder
	// Gatherer backs the metrics endpoint; nil disables it.
	Gatherer    prometheus.Gatherer
	MetricsPath string

	// DB is pinged by /healthz when set.
	DB Pinger

	CookieDomain    string
	CookieSecure    bool
	LoginRateLimit  int
	LoginRateWindow time.Duration
	ScoreRateLimit  int

	// StaticFS overrides the embedded assets, rooted at the static directory.
	StaticFS fs.FS
	Logger   *slog.Logger
}

type mw = func(http.Handler) http.Handler

// NewRouter builds the site's handler: every request passes the access gate,
// admin pages are re-checked by the page guard and state-changing admin
// requests need a CSRF token.
func NewRouter(s RouterServices) (http.Handler, error) {
	if s.Handlers == nil || s.Access == nil {
		return nil, errors.New("router: handlers and access service are required")
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	static := s.StaticFS
	if static == nil {
		sub, err := fs.Sub(portal.StaticFS, "web/static")
		if err != nil {
			return nil, err
		}
		static = sub
	}

	if s.LoginRateLimit <= 0 || s.LoginRateWindow <= 0 {
		s.LoginRateLimit, s.LoginRateWindow = 10, time.Minute
	}
	if s.ScoreRateLimit <= 0 {
		s.ScoreRateLimit = 30
	}

	h := s.Handlers
	mux := http.NewServeMux()

	csrf := CSRFProtection(CSRFConfig{CookieDomain: s.CookieDomain, Secure: s.CookieSecure})
	admin := []mw{csrf, RequireAdminPage(s.Access)}
	superOnly := append(append([]mw{}, admin...), RequireRoles(domainauth.RoleSuperAdmin))
	loginLimit := httprate.Limit(s.LoginRateLimit, s.LoginRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Too many sign-in attempts. Please wait a minute and try again.", http.StatusTooManyRequests)
		}),
	)
	scoreLimit := httprate.Limit(s.ScoreRateLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, ErrorParams{Code: http.StatusTooManyRequests, ErrCode: "rate_limited", Err: errors.New("too many score submissions")})
		}),
	)

	// Infrastructure.
	health := healthHandler(s.DB)
	handle(mux, "GET /healthz", health)
	handle(mux, "HEAD /healthz", health)
	handle(mux, "GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if s.Gatherer != nil && s.MetricsPath != "" {
		handle(mux, "GET "+s.MetricsPath, metrics.Handler(s.Gatherer))
	}

	// Public site.
	handle(mux, "GET /{$}", http.HandlerFunc(h.Home))
	handle(mux, "GET /news", http.HandlerFunc(h.News))
	handle(mux, "GET /news/{slug}", http.HandlerFunc(h.Article))
	handle(mux, "GET /events", http.HandlerFunc(h.Events))
	handle(mux, "GET /publications", http.HandlerFunc(h.Publications))
	handle(mux, "GET /publications/{id}/download", http.HandlerFunc(h.DownloadPublication))
	handle(mux, "GET /about", h.Static("About", "about"))
	handle(mux, "GET /contact", h.Static("Contact", "contact"))
	handle(mux, "GET "+authz.UnauthorizedPath, http.HandlerFunc(h.Unauthorized))
	handle(mux, "GET /games", http.HandlerFunc(h.GamesIndex))
	handle(mux, "GET /games/{game}", http.HandlerFunc(h.Game))
	handle(mux, "GET /api/games/{game}/scores", http.HandlerFunc(h.ListScores))
	handle(mux, "POST /api/games/{game}/scores", http.HandlerFunc(h.SubmitScore), scoreLimit)

	// Admin sign-in.
	handle(mux, "GET "+authz.AdminLoginPath, http.HandlerFunc(h.LoginPage), csrf)
	handle(mux, "POST "+authz.AdminLoginPath, http.HandlerFunc(h.LoginSubmit), loginLimit, csrf)
	handle(mux, "POST /admin/logout", http.HandlerFunc(h.Logout), csrf)

	// Admin console.
	handle(mux, "GET "+authz.AdminPath, http.HandlerFunc(h.DashboardPage), admin...)
	handle(mux, "GET /admin/{$}", http.HandlerFunc(h.DashboardPage), admin...)

	handle(mux, "GET /admin/posts", http.HandlerFunc(h.Posts), admin...)
	handle(mux, "GET /admin/posts/new", http.HandlerFunc(h.NewPost), admin...)
	handle(mux, "POST /admin/posts", http.HandlerFunc(h.CreatePost), admin...)
	handle(mux, "GET /admin/posts/{id}", http.HandlerFunc(h.EditPost), admin...)
	handle(mux, "POST /admin/posts/{id}", http.HandlerFunc(h.UpdatePost), admin...)
	handle(mux, "POST /admin/posts/{id}/delete", http.HandlerFunc(h.DeletePost), admin...)

	handle(mux, "GET /admin/events", http.HandlerFunc(h.AdminEvents), admin...)
	handle(mux, "GET /admin/events/new", http.HandlerFunc(h.NewEvent), admin...)
	handle(mux, "POST /admin/events", http.HandlerFunc(h.CreateEvent), admin...)
	handle(mux, "GET /admin/events/{id}", http.HandlerFunc(h.EditEvent), admin...)
	handle(mux, "POST /admin/events/{id}", http.HandlerFunc(h.UpdateEvent), admin...)
	handle(mux, "POST /admin/events/{id}/delete", http.HandlerFunc(h.DeleteEvent), admin...)

	handle(mux, "GET /admin/publications", http.HandlerFunc(h.AdminPublications), admin...)
	handle(mux, "GET /admin/publications/new", http.HandlerFunc(h.NewPublication), admin...)
	handle(mux, "POST /admin/publications", http.HandlerFunc(h.CreatePublication), admin...)
	handle(mux, "GET /admin/publications/{id}", http.HandlerFunc(h.EditPublication), admin...)
	handle(mux, "POST /admin/publications/{id}", http.HandlerFunc(h.UpdatePublication), admin...)
	handle(mux, "POST /admin/publications/{id}/delete", http.HandlerFunc(h.DeletePublication), admin...)

	handle(mux, "GET /admin/users", http.HandlerFunc(h.Users), superOnly...)
	handle(mux, "GET /admin/shop", h.ComingSoon("Shop"),
		append(append([]mw{}, admin...), RequireRoles(domainauth.RoleSuperAdmin, domainauth.RoleShopAdmin))...)
	handle(mux, "GET /admin/discussions", h.ComingSoon("Discussions"),
		append(append([]mw{}, admin...), RequireRoles(domainauth.RoleSuperAdmin, domainauth.RoleDiscussionAdmin))...)

	// Anything unmatched, including unknown /admin paths that passed the gate.
	handle(mux, "/", http.HandlerFunc(h.NotFound))

	return chain(mux, Recover(logger), Logging(logger, s.Metrics), AccessGate(s.Access)), nil
}

// handle registers h under pattern behind mws and labels the request's
// metrics with the pattern.
func handle(mux *http.ServeMux, pattern string, h http.Handler, mws ...mw) {
	wrapped := chain(h, mws...)
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRouteLabel(r.Context(), pattern)
		wrapped.ServeHTTP(w, r)
	}))
}
