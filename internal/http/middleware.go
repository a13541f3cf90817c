package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/authz"
	"github.com/mpo-id/portal/internal/observability/metrics"
	"github.com/mpo-id/portal/internal/ports"
	"github.com/mpo-id/portal/internal/service"
)

// Authorizer is the slice of the access service the middleware needs.
type Authorizer interface {
	Authorize(ctx context.Context, jar ports.CookieJar, path string) authz.Decision
	AuthorizeAdminPage(ctx context.Context, jar ports.CookieJar, path string) service.AdminAccess
}

var _ Authorizer = (*service.AccessService)(nil)

// Logging logs each request and records its latency by route pattern.
func Logging(logger *slog.Logger, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, label := withRouteLabel(r.Context())
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))
			elapsed := time.Since(start)
			rec.HTTPRequest(r.Method, label.pattern, ww.status, elapsed)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", elapsed),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// staticExtensions are image types served without an authorization pass.
var staticExtensions = map[string]struct{}{
	".svg": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
}

// skipsAccessGate reports whether p is a static asset request.
func skipsAccessGate(p string) bool {
	if strings.HasPrefix(p, "/static/") || p == "/favicon.ico" {
		return true
	}
	_, ok := staticExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

// AccessGate runs the route policy in front of every non-static request.
// Cookies written while resolving the session are sent on both the redirect
// and the allowed response, and are visible to downstream handlers.
func AccessGate(access Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipsAccessGate(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			jar := newRequestJar(r)
			d := access.Authorize(r.Context(), jar, r.URL.Path)
			jar.Flush(w)
			if !d.Allowed() {
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, jar.Apply(r))
		})
	}
}

// RequireAdminPage re-checks the caller on every admin page with its own jar
// and stores the resolved profile in the request context.
func RequireAdminPage(access Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			jar := newRequestJar(r)
			res := access.AuthorizeAdminPage(r.Context(), jar, r.URL.Path)
			jar.Flush(w)
			if !res.Decision.Allowed() {
				http.Redirect(w, r, res.Decision.Target, http.StatusSeeOther)
				return
			}
			r = jar.Apply(r)
			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), res.Profile)))
		})
	}
}

// RequireRoles narrows an admin page to the given roles. It must run inside
// RequireAdminPage.
func RequireRoles(roles ...domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := ProfileFromContext(r.Context())
			if !ok || !p.Role.In(roles...) {
				http.Redirect(w, r, authz.UnauthorizedPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// chain applies middleware so the first argument is outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
