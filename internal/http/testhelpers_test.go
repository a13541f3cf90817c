package httpx

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	portal "github.com/mpo-id/portal"
	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/authz"
	"github.com/mpo-id/portal/internal/mocks"
	"github.com/mpo-id/portal/internal/ports"
	"github.com/mpo-id/portal/internal/service"
)

const (
	testSessionCookie = "mpo-session"
	testAdminID       = "7d1c3f0e-1b9a-4c7e-9d52-2f3a1e6b8c40"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// stubAuthorizer returns canned decisions and optionally mutates the jar the
// way an identity provider refreshing tokens would.
type stubAuthorizer struct {
	decision authz.Decision
	access   service.AdminAccess
	set      *http.Cookie
	calls    int
	paths    []string
}

func (s *stubAuthorizer) Authorize(_ context.Context, jar ports.CookieJar, path string) authz.Decision {
	s.calls++
	s.paths = append(s.paths, path)
	if s.set != nil {
		jar.SetCookie(s.set)
	}
	return s.decision
}

func (s *stubAuthorizer) AuthorizeAdminPage(_ context.Context, jar ports.CookieJar, path string) service.AdminAccess {
	s.calls++
	s.paths = append(s.paths, path)
	if s.set != nil {
		jar.SetCookie(s.set)
	}
	return s.access
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	sub, err := fs.Sub(portal.TemplateFS, "web/templates")
	require.NoError(t, err)
	r, err := NewRenderer(RendererConfig{TemplateFS: sub})
	require.NoError(t, err)
	return r
}

// siteFixture wires the real services over mocked ports.
type siteFixture struct {
	identity     *mocks.MockIdentityService
	profiles     *mocks.MockProfileStore
	posts        *mocks.MockPostRepository
	events       *mocks.MockEventRepository
	publications *mocks.MockPublicationRepository
	scores       *mocks.MockGameScoreRepository

	access   *service.AccessService
	handlers *Handlers
}

func newSiteFixture(t *testing.T) *siteFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &siteFixture{
		identity:     mocks.NewMockIdentityService(ctrl),
		profiles:     mocks.NewMockProfileStore(ctrl),
		posts:        mocks.NewMockPostRepository(ctrl),
		events:       mocks.NewMockEventRepository(ctrl),
		publications: mocks.NewMockPublicationRepository(ctrl),
		scores:       mocks.NewMockGameScoreRepository(ctrl),
	}
	now := func() time.Time { return testNow }
	f.access = service.NewAccessService(service.AccessServiceOptions{Identity: f.identity, Profiles: f.profiles})
	f.handlers = &Handlers{
		Render: testRenderer(t),
		Login:  service.NewAdminLoginService(service.AdminLoginServiceOptions{Identity: f.identity, Access: f.access}),
		Content: service.NewContentService(service.ContentServiceOptions{
			Posts: f.posts, Events: f.events, Publications: f.publications, Now: now,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Posts: f.posts, Events: f.events, Publications: f.publications, Now: now,
		}),
		Games:    service.NewGameService(service.GameServiceOptions{Scores: f.scores}),
		Profiles: f.profiles,
	}
	return f
}

// signedIn makes every identity check resolve to the test admin with role.
func (f *siteFixture) signedIn(role domainauth.Role) {
	f.identity.EXPECT().CurrentUser(gomock.Any(), gomock.Any()).
		Return(&domainauth.Identity{UserID: testAdminID, Email: "admin@example.org"}, nil).AnyTimes()
	f.profiles.EXPECT().GetRole(gomock.Any(), testAdminID).Return(string(role), nil).AnyTimes()
	f.profiles.EXPECT().GetProfile(gomock.Any(), testAdminID).
		Return(&domainauth.UserProfile{ID: testAdminID, Email: "admin@example.org", Role: role}, nil).AnyTimes()
}

func (f *siteFixture) anonymous() {
	f.identity.EXPECT().CurrentUser(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
}

func (f *siteFixture) router(t *testing.T) http.Handler {
	t.Helper()
	h, err := NewRouter(RouterServices{Handlers: f.handlers, Access: f.access})
	require.NoError(t, err)
	return h
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
