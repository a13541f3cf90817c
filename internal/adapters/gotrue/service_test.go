package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpo-id/portal/internal/adapters/cookies"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
)

const (
	testSecret  = "super-secret-jwt-token-with-at-least-32-characters"
	testAnonKey = "anon-key"
	accessName  = "sb-access-token"
	refreshName = "sb-refresh-token"
)

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: sub + "@mpo.example.org",
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

type fakeAuth struct {
	calls   atomic.Int32
	handler http.HandlerFunc
}

func newFakeAuth(t *testing.T, h http.HandlerFunc) (*fakeAuth, *httptest.Server) {
	t.Helper()
	f := &fakeAuth{handler: h}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		f.handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestService(t *testing.T, baseURL string, verifier TokenVerifier) *Service {
	t.Helper()
	client, err := NewClient(Config{BaseURL: baseURL, AnonKey: testAnonKey, BreakerFailures: 3, BreakerCooldown: time.Minute})
	require.NoError(t, err)
	svc, err := NewService(ServiceConfig{
		Client:        client,
		Verifier:      verifier,
		Cookies:       cookies.Options{Secure: true},
		RefreshWindow: time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithPassword(t *testing.T) {
	access := signToken(t, testSecret, "user-1", time.Now().Add(time.Hour))
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@mpo.example.org", body["email"])
		assert.Equal(t, "pw", body["password"])
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  access,
			"token_type":    "bearer",
			"expires_in":    3600,
			"refresh_token": "r-1",
			"user":          map[string]string{"id": "user-1", "email": "admin@mpo.example.org"},
		})
	})
	svc := newTestService(t, srv.URL, NewHMACVerifier(testSecret, "authenticated"))
	jar := cookies.NewMapJar(nil)

	id, err := svc.SignInWithPassword(context.Background(), jar, domainauth.Credentials{Email: "admin@mpo.example.org", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "admin@mpo.example.org", id.Email)

	v, ok := jar.Cookie(accessName)
	require.True(t, ok)
	assert.Equal(t, access, v)
	v, _ = jar.Cookie(refreshName)
	assert.Equal(t, "r-1", v)
	assert.True(t, jar.Last(accessName).Secure)
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})
	svc := newTestService(t, srv.URL, nil)
	jar := cookies.NewMapJar(nil)

	_, err := svc.SignInWithPassword(context.Background(), jar, domainauth.Credentials{Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Empty(t, jar.Written)
}

func TestCurrentUser_NoCookies(t *testing.T) {
	fake, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestService(t, srv.URL, nil)

	id, err := svc.CurrentUser(context.Background(), cookies.NewMapJar(nil))
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Zero(t, fake.calls.Load())
}

func TestCurrentUser_ValidTokenVerifiedLocally(t *testing.T) {
	fake, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestService(t, srv.URL, NewHMACVerifier(testSecret, "authenticated"))
	jar := cookies.NewMapJar(map[string]string{
		accessName:  signToken(t, testSecret, "user-1", time.Now().Add(time.Hour)),
		refreshName: "r-1",
	})

	id, err := svc.CurrentUser(context.Background(), jar)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user-1", id.UserID)
	assert.Empty(t, jar.Written)
	assert.Zero(t, fake.calls.Load())
}

func TestCurrentUser_RefreshesNearExpiry(t *testing.T) {
	fresh := signToken(t, testSecret, "user-1", time.Now().Add(time.Hour))
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r-1", body["refresh_token"])
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  fresh,
			"expires_in":    3600,
			"refresh_token": "r-2",
			"user":          map[string]string{"id": "user-1"},
		})
	})
	svc := newTestService(t, srv.URL, NewHMACVerifier(testSecret, "authenticated"))
	jar := cookies.NewMapJar(map[string]string{
		accessName:  signToken(t, testSecret, "user-1", time.Now().Add(30*time.Second)),
		refreshName: "r-1",
	})

	id, err := svc.CurrentUser(context.Background(), jar)
	require.NoError(t, err)
	require.NotNil(t, id)

	v, _ := jar.Cookie(accessName)
	assert.Equal(t, fresh, v)
	v, _ = jar.Cookie(refreshName)
	assert.Equal(t, "r-2", v)
}

func TestCurrentUser_RejectedRefreshClearsCookies(t *testing.T) {
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":       400,
			"error_code": "refresh_token_not_found",
			"msg":        "Invalid Refresh Token: Refresh Token Not Found",
		})
	})
	svc := newTestService(t, srv.URL, NewHMACVerifier(testSecret, "authenticated"))
	jar := cookies.NewMapJar(map[string]string{
		accessName:  signToken(t, testSecret, "user-1", time.Now().Add(-time.Minute)),
		refreshName: "revoked",
	})

	id, err := svc.CurrentUser(context.Background(), jar)
	require.NoError(t, err)
	assert.Nil(t, id)

	_, ok := jar.Cookie(accessName)
	assert.False(t, ok)
	_, ok = jar.Cookie(refreshName)
	assert.False(t, ok)
	assert.Equal(t, -1, jar.Last(accessName).MaxAge)
}

func TestCurrentUser_BadSignatureClearsCookies(t *testing.T) {
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestService(t, srv.URL, NewHMACVerifier(testSecret, "authenticated"))
	jar := cookies.NewMapJar(map[string]string{
		accessName: signToken(t, "another-secret-another-secret-another", "user-1", time.Now().Add(time.Hour)),
	})

	id, err := svc.CurrentUser(context.Background(), jar)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, id)
	_, ok := jar.Cookie(accessName)
	assert.False(t, ok)
}

func TestCurrentUser_RemoteVerifier(t *testing.T) {
	access := signToken(t, testSecret, "user-9", time.Now().Add(time.Hour))
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer "+access, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"id": "user-9", "email": "nine@mpo.example.org"})
	})
	svc := newTestService(t, srv.URL, nil)
	jar := cookies.NewMapJar(map[string]string{accessName: access})

	id, err := svc.CurrentUser(context.Background(), jar)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user-9", id.UserID)
	assert.Equal(t, "nine@mpo.example.org", id.Email)
	assert.False(t, id.ExpiresAt.IsZero())
}

func TestCurrentUser_RemoteVerifierRejected(t *testing.T) {
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
	})
	svc := newTestService(t, srv.URL, nil)
	jar := cookies.NewMapJar(map[string]string{
		accessName: signToken(t, testSecret, "user-9", time.Now().Add(time.Hour)),
	})

	_, err := svc.CurrentUser(context.Background(), jar)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, ok := jar.Cookie(accessName)
	assert.False(t, ok)
}

func TestCurrentUser_ServerErrorKeepsCookies(t *testing.T) {
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	svc := newTestService(t, srv.URL, nil)
	jar := cookies.NewMapJar(map[string]string{
		accessName: signToken(t, testSecret, "user-9", time.Now().Add(time.Hour)),
	})

	_, err := svc.CurrentUser(context.Background(), jar)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, jar.Written)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fake, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	svc := newTestService(t, srv.URL, nil)
	ctx := context.Background()

	for range 3 {
		_, err := svc.client.user(ctx, "tok")
		require.Error(t, err)
	}
	_, err := svc.client.user(ctx, "tok")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), fake.calls.Load())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	fake, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	svc := newTestService(t, srv.URL, nil)

	for range 5 {
		_, err := svc.client.user(context.Background(), "tok")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(5), fake.calls.Load())
}

func TestSignOut(t *testing.T) {
	access := signToken(t, testSecret, "user-1", time.Now().Add(time.Hour))
	var revoked atomic.Bool
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer "+access, r.Header.Get("Authorization"))
		revoked.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	svc := newTestService(t, srv.URL, nil)
	jar := cookies.NewMapJar(map[string]string{accessName: access, refreshName: "r"})

	require.NoError(t, svc.SignOut(context.Background(), jar))
	assert.True(t, revoked.Load())
	_, ok := jar.Cookie(accessName)
	assert.False(t, ok)
	_, ok = jar.Cookie(refreshName)
	assert.False(t, ok)
}

func TestSignOut_ClearsCookiesWhenRevocationFails(t *testing.T) {
	_, srv := newFakeAuth(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestService(t, srv.URL, nil)
	jar := cookies.NewMapJar(map[string]string{accessName: "a", refreshName: "r"})

	require.Error(t, svc.SignOut(context.Background(), jar))
	_, ok := jar.Cookie(accessName)
	assert.False(t, ok)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "auth.local", AnonKey: "k"})
	require.Error(t, err)
	_, err = NewClient(Config{BaseURL: "https://x.supabase.co"})
	require.Error(t, err)

	c, err := NewClient(Config{BaseURL: "https://x.supabase.co/", AnonKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://x.supabase.co/auth/v1", c.Issuer())
}
