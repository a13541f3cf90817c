package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/authz"
	"github.com/mpo-id/portal/internal/service"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSkipsAccessGate(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/static/css/site.css", true},
		{"/favicon.ico", true},
		{"/images/logo.PNG", true},
		{"/uploads/cover.webp", true},
		{"/admin/logo.svg", true},
		{"/admin", false},
		{"/admin/posts", false},
		{"/news/hello", false},
		{"/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, skipsAccessGate(tt.path))
		})
	}
}

func TestAccessGate_StaticBypassesPolicy(t *testing.T) {
	stub := &stubAuthorizer{decision: authz.Redirect("/admin/login")}
	var called bool
	h := AccessGate(stub)(okHandler(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/scores.js", nil))

	assert.True(t, called)
	assert.Equal(t, 0, stub.calls)
}

func TestAccessGate_RedirectCarriesCookies(t *testing.T) {
	stub := &stubAuthorizer{
		decision: authz.Redirect("/admin/login?redirectTo=%2Fadmin%2Fposts"),
		set:      &http.Cookie{Name: testSessionCookie, Path: "/", MaxAge: -1},
	}
	var called bool
	h := AccessGate(stub)(okHandler(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/posts", nil))

	resp := rec.Result()
	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login?redirectTo=%2Fadmin%2Fposts", resp.Header.Get("Location"))
	c := responseCookie(resp, testSessionCookie)
	require.NotNil(t, c, "cleared cookie must reach the browser on redirect")
	assert.Equal(t, -1, c.MaxAge)
}

func TestAccessGate_AllowMirrorsRefreshedCookies(t *testing.T) {
	stub := &stubAuthorizer{
		decision: authz.Allow,
		set:      &http.Cookie{Name: testSessionCookie, Value: "refreshed", Path: "/"},
	}
	var seen string
	h := AccessGate(stub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(testSessionCookie)
		if err == nil {
			seen = c.Value
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: testSessionCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refreshed", seen)
	c := responseCookie(rec.Result(), testSessionCookie)
	require.NotNil(t, c)
	assert.Equal(t, "refreshed", c.Value)
	assert.Equal(t, []string{"/admin"}, stub.paths)
}

func TestRequireAdminPage(t *testing.T) {
	t.Run("redirects when denied", func(t *testing.T) {
		stub := &stubAuthorizer{access: service.AdminAccess{Decision: authz.Redirect(authz.UnauthorizedPath)}}
		var called bool
		rec := httptest.NewRecorder()
		RequireAdminPage(stub)(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/posts", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, authz.UnauthorizedPath, rec.Header().Get("Location"))
	})

	t.Run("stores profile when allowed", func(t *testing.T) {
		profile := &domainauth.UserProfile{ID: testAdminID, Role: domainauth.RoleContentAdmin}
		stub := &stubAuthorizer{access: service.AdminAccess{Decision: authz.Allow, Role: profile.Role, Profile: profile}}
		var got *domainauth.UserProfile
		h := RequireAdminPage(stub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = ProfileFromContext(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Same(t, profile, got)
	})
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name    string
		profile *domainauth.UserProfile
		allowed bool
	}{
		{"no profile", nil, false},
		{"content admin", &domainauth.UserProfile{Role: domainauth.RoleContentAdmin}, false},
		{"super admin", &domainauth.UserProfile{Role: domainauth.RoleSuperAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := RequireRoles(domainauth.RoleSuperAdmin)(okHandler(&called))
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			req = req.WithContext(WithProfile(req.Context(), tt.profile))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.allowed, called)
			if !tt.allowed {
				assert.Equal(t, http.StatusSeeOther, rec.Code)
				assert.Equal(t, authz.UnauthorizedPath, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouteLabel(t *testing.T) {
	ctx, label := withRouteLabel(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	setRouteLabel(ctx, "GET /news/{slug}")
	assert.Equal(t, "GET /news/{slug}", label.pattern)

	// No holder in the context is a no-op.
	setRouteLabel(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "GET /")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	var called bool
	chain(okHandler(&called), mark("outer"), mark("inner")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.True(t, called)
}
