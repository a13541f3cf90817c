package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/model"
	"github.com/mpo-id/portal/internal/service"
)

func strPtr(s string) *string { return &s }

func samplePost() *model.Post {
	published := testNow.Add(-24 * time.Hour)
	return &model.Post{
		ID:          "0b5e9a52-3a6b-4a3f-8e0f-1c7a2f6f9d11",
		TitleEN:     "Annual Research Symposium",
		TitleID:     strPtr("Simposium Riset Tahunan"),
		SlugEN:      "annual-research-symposium",
		SlugID:      strPtr("simposium-riset-tahunan"),
		ContentEN:   "Members presented <their> work.",
		ExcerptEN:   strPtr("Members presented their work."),
		Category:    "academic",
		Status:      model.PostStatusPublished,
		PublishedAt: &published,
		IsFeatured:  true,
		ViewsCount:  12,
		UpdatedAt:   testNow,
	}
}

func sampleEvent() *model.Event {
	end := testNow.Add(50 * time.Hour)
	return &model.Event{
		ID:        "4f1d2c3b-5a6e-4f70-8a9b-0c1d2e3f4a5b",
		TitleEN:   "Friday Kajian",
		StartDate: testNow.Add(48 * time.Hour),
		EndDate:   &end,
		Category:  model.EventCategoryIslamic,
		Location:  strPtr("Main Hall"),
		Color:     strPtr("#1f7a4d"),
	}
}

func samplePublication() *model.Publication {
	vol, issue := 3, 2
	size := int64(3 << 20)
	return &model.Publication{
		ID:           "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d",
		TitleEN:      "MPO Bulletin",
		VolumeNumber: &vol,
		IssueNumber:  &issue,
		PublishDate:  testNow,
		PDFURL:       "https://cdn.example.org/bulletin.pdf",
		FileSize:     &size,
	}
}

func TestNewRenderer_RequiresFS(t *testing.T) {
	_, err := NewRenderer(RendererConfig{})
	assert.Error(t, err)
}

func TestRenderer_RendersEveryPage(t *testing.T) {
	r := testRenderer(t)
	admin := &domainauth.UserProfile{ID: testAdminID, Email: "admin@example.org", Role: domainauth.RoleSuperAdmin}
	post, event, pub := samplePost(), sampleEvent(), samplePublication()

	tests := []struct {
		layout string
		page   string
		data   any
		want   string
	}{
		{LayoutPublic, "home", &service.HomePage{Featured: []*model.Post{post}, LatestPosts: []*model.Post{post}, UpcomingEvents: []*model.Event{event}}, "Annual Research Symposium"},
		{LayoutPublic, "news", newsView{Posts: []*model.Post{post}}, "/news/annual-research-symposium"},
		{LayoutPublic, "article", &service.Article{Post: post, Related: []*model.Post{post}}, "Members presented &lt;their&gt; work."},
		{LayoutPublic, "events", eventsView{Categories: model.EventCategories(), Events: []*model.Event{event}}, "Main Hall"},
		{LayoutPublic, "publications", []*model.Publication{pub}, "Vol. 3 No. 2"},
		{LayoutPublic, "about", nil, "Muslim Postgraduate Organization"},
		{LayoutPublic, "contact", nil, "mailto:"},
		{LayoutPublic, "games", gamesView{Games: model.Games()}, "/games/knowledge-connect"},
		{LayoutPublic, "game", gameView{Game: model.Games()[0], Scores: []*model.GameScore{{PlayerName: "Aisha", Score: 90, PlayedAt: testNow}}}, "Aisha"},
		{LayoutPublic, "unauthorized", nil, "Access denied"},
		{LayoutPublic, "not-found", nil, "Page not found"},
		{LayoutPublic, "error", nil, "Something went wrong"},
		{LayoutBare, "login", loginView{Email: "a@b.org", RedirectTo: "/admin/posts"}, `value="/admin/posts"`},
		{LayoutAdmin, "dashboard", &model.DashboardStats{TotalPosts: 4, RecentPosts: []*model.Post{post}, UpcomingEvents: []*model.Event{event}}, "Recent posts"},
		{LayoutAdmin, "posts", listView[*model.Post]{Items: []*model.Post{post}, Paging: pagination{Page: 2, HasPrev: true}}, "/admin/posts/" + post.ID + "/delete"},
		{LayoutAdmin, "post-form", formView[model.PostInput]{Mode: FormModeEdit, Action: "/admin/posts/x", Input: model.InputFromPost(post)}, "Save changes"},
		{LayoutAdmin, "admin-events", listView[*model.Event]{Items: []*model.Event{event}}, "Friday Kajian"},
		{LayoutAdmin, "event-form", formView[model.EventInput]{Mode: FormModeCreate, Action: "/admin/events", Input: model.InputFromEvent(event), Extra: model.EventCategories()}, `value="islamic" selected`},
		{LayoutAdmin, "admin-publications", listView[*model.Publication]{Items: []*model.Publication{pub}}, "MPO Bulletin"},
		{LayoutAdmin, "publication-form", formView[model.PublicationInput]{Mode: FormModeCreate, Action: "/admin/publications", Input: model.InputFromPublication(pub)}, `name="volume_number" type="number" min="1" value="3"`},
		{LayoutAdmin, "users", listView[*domainauth.UserProfile]{Items: []*domainauth.UserProfile{admin}}, "Super Admin"},
		{LayoutAdmin, "coming-soon", nil, "available soon"},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			d := PageData{Title: tt.page, Page: tt.page, Locale: model.LocaleEN, CSRFToken: "tok", Data: tt.data}
			if tt.layout == LayoutAdmin {
				d.Profile = admin
				d.Nav = AdminNav(admin.Role, "/admin")
			}
			rec := httptest.NewRecorder()
			r.Render(rec, http.StatusOK, tt.layout, d)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRenderer_LocalizesPublicPages(t *testing.T) {
	r := testRenderer(t)
	d := PageData{Page: "news", Locale: model.LocaleID, Data: newsView{Posts: []*model.Post{samplePost()}}}
	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, LayoutPublic, d)

	body := rec.Body.String()
	assert.Contains(t, body, "Simposium Riset Tahunan")
	assert.Contains(t, body, "/news/simposium-riset-tahunan")
	assert.Contains(t, body, "Berita")
}

func TestRenderer_FieldErrors(t *testing.T) {
	r := testRenderer(t)
	d := PageData{
		Page:   "post-form",
		Fields: map[string]string{"title_en": "This field is required."},
		Error:  "Please fix the errors below.",
		Data:   formView[model.PostInput]{Mode: FormModeCreate, Action: "/admin/posts"},
	}
	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusBadRequest, LayoutAdmin, d)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")
	assert.Contains(t, rec.Body.String(), "Please fix the errors below.")
}

func TestRenderer_ExecutionFailureIs500(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.tmpl":     {Data: []byte(`{{define "layout"}}{{renderSection .Page .}}{{end}}`)},
		"pages/p.tmpl":    {Data: []byte(`{{define "p-content"}}ok{{end}}`)},
		"admin/dash.tmpl": {Data: []byte(`{{define "dash-content"}}dash{{end}}`)},
	}
	r, err := NewRenderer(RendererConfig{TemplateFS: fsys, Logger: discardLogger()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.Render(rec, http.StatusOK, LayoutPublic, PageData{Page: "p"})
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	r.Render(rec, http.StatusOK, LayoutPublic, PageData{Page: "missing"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "…", truncate("abc", 1))
	assert.Equal(t, "kaj…", truncate("kajian ilmiah", 4))
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Berita", translate(model.LocaleID, "News"))
	assert.Equal(t, "News", translate(model.LocaleEN, "News"))
	assert.Equal(t, "Unknown", translate(model.LocaleID, "Unknown"))
}
