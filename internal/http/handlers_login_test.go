package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/ports"
)

func loginRequest(email, password, redirectTo string) *http.Request {
	return postForm("/admin/login", url.Values{
		"email":      {email},
		"password":   {password},
		"redirectTo": {redirectTo},
	})
}

func TestLoginPage_KeepsRedirectTarget(t *testing.T) {
	f := newSiteFixture(t)
	rec := httptest.NewRecorder()
	f.handlers.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login?redirectTo=%2Fadmin%2Fevents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="redirectTo" value="/admin/events"`)
}

func TestLoginSubmit_Success(t *testing.T) {
	tests := []struct {
		name       string
		redirectTo string
		want       string
	}{
		{"returns to requested page", "/admin/posts", "/admin/posts"},
		{"defaults to dashboard", "", "/admin"},
		{"rejects external target", "https://evil.example.com", "/admin"},
		{"rejects protocol relative", "//evil.example.com", "/admin"},
		{"rejects tab before second slash", "/\t/evil.example.com", "/admin"},
		{"rejects newline before second slash", "/\n/evil.example.com", "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSiteFixture(t)
			f.identity.EXPECT().
				SignInWithPassword(gomock.Any(), gomock.Any(), domainauth.Credentials{Email: "admin@example.org", Password: "secret"}).
				DoAndReturn(func(_ context.Context, jar ports.CookieJar, _ domainauth.Credentials) (*domainauth.Identity, error) {
					jar.SetCookie(&http.Cookie{Name: testSessionCookie, Value: "sess", Path: "/"})
					return &domainauth.Identity{UserID: testAdminID, Email: "admin@example.org"}, nil
				})
			f.profiles.EXPECT().GetRole(gomock.Any(), testAdminID).Return("content_admin", nil)

			rec := httptest.NewRecorder()
			f.handlers.LoginSubmit(rec, loginRequest(" admin@example.org ", "secret", tt.redirectTo))

			resp := rec.Result()
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.want, resp.Header.Get("Location"))
			c := responseCookie(resp, testSessionCookie)
			require.NotNil(t, c)
			assert.Equal(t, "sess", c.Value)
		})
	}
}

func TestLoginSubmit_InvalidCredentials(t *testing.T) {
	f := newSiteFixture(t)
	f.identity.EXPECT().SignInWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domainauth.ErrInvalidCredentials)

	rec := httptest.NewRecorder()
	f.handlers.LoginSubmit(rec, loginRequest("admin@example.org", "wrong", "/admin/posts"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	body := rec.Body.String()
	assert.Contains(t, body, "Invalid email or password.")
	assert.Contains(t, body, `value="admin@example.org"`)
	assert.NotContains(t, body, "wrong")
}

func TestLoginSubmit_NonAdminIsSignedOut(t *testing.T) {
	f := newSiteFixture(t)
	f.identity.EXPECT().SignInWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jar ports.CookieJar, _ domainauth.Credentials) (*domainauth.Identity, error) {
			jar.SetCookie(&http.Cookie{Name: testSessionCookie, Value: "sess", Path: "/"})
			return &domainauth.Identity{UserID: testAdminID}, nil
		})
	f.profiles.EXPECT().GetRole(gomock.Any(), testAdminID).Return("member", nil)
	f.identity.EXPECT().SignOut(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jar ports.CookieJar) error {
			jar.SetCookie(&http.Cookie{Name: testSessionCookie, Path: "/", MaxAge: -1})
			return nil
		})

	rec := httptest.NewRecorder()
	f.handlers.LoginSubmit(rec, loginRequest("member@example.org", "secret", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You do not have admin access")
	// The last Set-Cookie for the session clears it.
	var last *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == testSessionCookie {
			last = c
		}
	}
	require.NotNil(t, last)
	assert.Equal(t, -1, last.MaxAge)
}

func TestLoginSubmit_InvalidForm(t *testing.T) {
	f := newSiteFixture(t)
	rec := httptest.NewRecorder()
	f.handlers.LoginSubmit(rec, loginRequest("not-an-email", "", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter your email and password.")
}

func TestLoginSubmit_ProviderFailure(t *testing.T) {
	f := newSiteFixture(t)
	f.identity.EXPECT().SignInWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("dial tcp: connection refused"))

	rec := httptest.NewRecorder()
	f.handlers.LoginSubmit(rec, loginRequest("admin@example.org", "secret", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgLoginUnavailable)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLogout(t *testing.T) {
	f := newSiteFixture(t)
	f.identity.EXPECT().SignOut(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jar ports.CookieJar) error {
			jar.SetCookie(&http.Cookie{Name: testSessionCookie, Path: "/", MaxAge: -1})
			return nil
		})

	rec := httptest.NewRecorder()
	f.handlers.Logout(rec, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.NotNil(t, responseCookie(rec.Result(), testSessionCookie))
}
