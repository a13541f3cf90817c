package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
)

func navLabels(items []NavItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestAdminNav(t *testing.T) {
	base := []string{"Dashboard", "Posts", "Events", "Publications"}
	tests := []struct {
		role domainauth.Role
		want []string
	}{
		{domainauth.RoleSuperAdmin, append(append([]string{}, base...), "Users", "Shop", "Discussions")},
		{domainauth.RoleContentAdmin, base},
		{domainauth.RoleShopAdmin, append(append([]string{}, base...), "Shop")},
		{domainauth.RoleDiscussionAdmin, append(append([]string{}, base...), "Discussions")},
		{domainauth.RoleMember, []string{}},
		{domainauth.RoleNone, []string{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, navLabels(AdminNav(tt.role, "/admin")))
		})
	}
}

func TestAdminNav_ActiveEntry(t *testing.T) {
	items := AdminNav(domainauth.RoleSuperAdmin, "/admin/posts/123")
	active := []string{}
	for _, it := range items {
		if it.Active {
			active = append(active, it.Label)
		}
	}
	assert.Equal(t, []string{"Posts"}, active)

	for _, it := range AdminNav(domainauth.RoleSuperAdmin, "/admin") {
		assert.Equal(t, it.Label == "Dashboard", it.Active, it.Label)
	}
}

func TestLocale(t *testing.T) {
	t.Run("query wins and is remembered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/news?lang=id", nil)
		req.AddCookie(&http.Cookie{Name: localeCookie, Value: "en"})
		rec := httptest.NewRecorder()

		assert.Equal(t, model.LocaleID, locale(rec, req))
		c := responseCookie(rec.Result(), localeCookie)
		require.NotNil(t, c)
		assert.Equal(t, "id", c.Value)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/news", nil)
		req.AddCookie(&http.Cookie{Name: localeCookie, Value: "id"})
		assert.Equal(t, model.LocaleID, locale(httptest.NewRecorder(), req))
	})

	t.Run("default english", func(t *testing.T) {
		assert.Equal(t, model.LocaleEN, locale(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
	})
}

func TestFormError(t *testing.T) {
	fields, msg, ok := formError(model.FieldErrors{"title_en": "required"})
	require.True(t, ok)
	assert.Equal(t, "required", fields["title_en"])
	assert.NotEmpty(t, msg)

	fields, msg, ok = formError(apperrors.Conflict("slug_en", "slug already in use"))
	require.True(t, ok)
	assert.NotEmpty(t, msg)
	assert.Equal(t, msg, fields["slug_en"])

	_, _, ok = formError(assert.AnError)
	assert.False(t, ok)
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseEventForm(t *testing.T) {
	in, errs := parseEventForm(postForm("/admin/events", url.Values{
		"title_en":     {"  Seminar "},
		"start_date":   {"2025-04-01T19:30"},
		"end_date":     {""},
		"category":     {"academic"},
		"is_recurring": {"on"},
	}))
	assert.Empty(t, errs)
	assert.Equal(t, "Seminar", in.TitleEN)
	assert.Equal(t, time.Date(2025, 4, 1, 19, 30, 0, 0, time.Local), in.StartDate)
	assert.Nil(t, in.EndDate)
	assert.True(t, in.IsRecurring)

	_, errs = parseEventForm(postForm("/admin/events", url.Values{"start_date": {"next tuesday"}}))
	assert.Contains(t, errs, "start_date")
}

func TestParsePublicationForm(t *testing.T) {
	in, errs := parsePublicationForm(postForm("/admin/publications", url.Values{
		"title_en":      {"Bulletin"},
		"volume_number": {"4"},
		"issue_number":  {""},
		"publish_date":  {"2025-01-15"},
		"file_size":     {"2048"},
	}))
	assert.Empty(t, errs)
	require.NotNil(t, in.VolumeNumber)
	assert.Equal(t, 4, *in.VolumeNumber)
	assert.Nil(t, in.IssueNumber)
	require.NotNil(t, in.FileSize)
	assert.Equal(t, int64(2048), *in.FileSize)

	_, errs = parsePublicationForm(postForm("/admin/publications", url.Values{"volume_number": {"four"}, "file_size": {"big"}}))
	assert.Contains(t, errs, "volume_number")
	assert.Contains(t, errs, "file_size")
}

func TestParsePostForm(t *testing.T) {
	in, errs := parsePostForm(postForm("/admin/posts", url.Values{
		"title_en":    {"Hello"},
		"content_en":  {"  body with spacing  "},
		"status":      {"published"},
		"is_featured": {"on"},
	}))
	assert.Empty(t, errs)
	assert.Equal(t, "  body with spacing  ", in.ContentEN)
	assert.Equal(t, model.PostStatusPublished, in.Status)
	assert.True(t, in.IsFeatured)
}
