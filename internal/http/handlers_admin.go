package httpx

import (
	"net/http"
	"strconv"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
)

const adminPageSize = 20

// pagination is the list state passed to admin tables.
type pagination struct {
	Page    int
	HasPrev bool
	HasNext bool
}

// pageParams reads ?page= (1-based) and returns limit and offset. One extra
// row is requested so the template can tell whether a next page exists.
func pageParams(r *http.Request) (page, limit, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page, adminPageSize + 1, (page - 1) * adminPageSize
}

func trimPage[T any](items []T, page int) ([]T, pagination) {
	p := pagination{Page: page, HasPrev: page > 1}
	if len(items) > adminPageSize {
		items = items[:adminPageSize]
		p.HasNext = true
	}
	return items, p
}

type listView[T any] struct {
	Items  []T
	Paging pagination
}

// DashboardPage serves GET /admin.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	d := h.adminPage(r, "Dashboard", "dashboard")
	d.Data = stats
	h.Render.Render(w, http.StatusOK, LayoutAdmin, d)
}

// adminError renders the failure page inside the admin shell.
func (h *Handlers) adminError(w http.ResponseWriter, r *http.Request, err error) {
	d := h.adminPage(r, "Not found", "not-found")
	status := http.StatusNotFound
	if !apperrors.IsNotFound(err) {
		h.logger().ErrorContext(r.Context(), "admin request failed", "path", r.URL.Path, "error", err)
		d = h.adminPage(r, "Something went wrong", "error")
		status = http.StatusInternalServerError
	}
	h.Render.Render(w, status, LayoutAdmin, d)
}

// renderForm shows an editor, optionally with the errors of a failed save.
func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, title, page string, view any, fields map[string]string, msg string) {
	d := h.adminPage(r, title, page)
	d.Data = view
	d.Fields = fields
	d.Error = msg
	h.Render.Render(w, status, LayoutAdmin, d)
}

// saved finishes a create or update: success redirects to list, known input
// errors re-render the form and anything else is a server error.
func (h *Handlers) saved(w http.ResponseWriter, r *http.Request, err error, list string, rerender func(fields map[string]string, msg string)) {
	if err == nil {
		http.Redirect(w, r, list+"?saved=1", http.StatusSeeOther)
		return
	}
	if fields, msg, ok := formError(err); ok {
		rerender(fields, msg)
		return
	}
	h.adminError(w, r, err)
}

// badForm merges parse errors reported before validation runs.
func badForm(parseErrs map[string]string) error {
	if len(parseErrs) == 0 {
		return nil
	}
	return model.FieldErrors(parseErrs)
}

func (h *Handlers) deleted(w http.ResponseWriter, r *http.Request, err error, list string) {
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	http.Redirect(w, r, list+"?deleted=1", http.StatusSeeOther)
}

func notice(r *http.Request) string {
	q := r.URL.Query()
	switch {
	case q.Get("saved") != "":
		return "Saved."
	case q.Get("deleted") != "":
		return "Deleted."
	}
	return ""
}

// --- posts

const postsPath = "/admin/posts"

// Posts serves GET /admin/posts.
func (h *Handlers) Posts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	posts, err := h.Content.ListPosts(r.Context(), limit, offset)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	items, paging := trimPage(posts, page)
	d := h.adminPage(r, "Posts", "posts")
	d.Notice = notice(r)
	d.Data = listView[*model.Post]{Items: items, Paging: paging}
	h.Render.Render(w, http.StatusOK, LayoutAdmin, d)
}

// NewPost serves GET /admin/posts/new.
func (h *Handlers) NewPost(w http.ResponseWriter, r *http.Request) {
	view := formView[model.PostInput]{
		Mode:   FormModeCreate,
		Action: postsPath,
		Input:  model.PostInput{Status: model.PostStatusDraft},
	}
	h.renderForm(w, r, http.StatusOK, "New post", "post-form", view, nil, "")
}

// CreatePost serves POST /admin/posts.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, perrs := parsePostForm(r)
	view := formView[model.PostInput]{Mode: FormModeCreate, Action: postsPath, Input: in}
	err := badForm(perrs)
	if err == nil {
		authorID := ""
		if p, ok := ProfileFromContext(r.Context()); ok {
			authorID = p.ID
		}
		_, err = h.Content.CreatePost(r.Context(), authorID, in)
	}
	h.saved(w, r, err, postsPath, func(fields map[string]string, msg string) {
		h.renderForm(w, r, http.StatusBadRequest, "New post", "post-form", view, fields, msg)
	})
}

// EditPost serves GET /admin/posts/{id}.
func (h *Handlers) EditPost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	post, err := h.Content.GetPost(r.Context(), id)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	view := formView[model.PostInput]{
		Mode:   FormModeEdit,
		ID:     id,
		Action: postsPath + "/" + id,
		Input:  model.InputFromPost(post),
		Extra:  post,
	}
	h.renderForm(w, r, http.StatusOK, "Edit post", "post-form", view, nil, "")
}

// UpdatePost serves POST /admin/posts/{id}.
func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, perrs := parsePostForm(r)
	view := formView[model.PostInput]{Mode: FormModeEdit, ID: id, Action: postsPath + "/" + id, Input: in}
	err := badForm(perrs)
	if err == nil {
		_, err = h.Content.UpdatePost(r.Context(), id, in)
	}
	h.saved(w, r, err, postsPath, func(fields map[string]string, msg string) {
		h.renderForm(w, r, http.StatusBadRequest, "Edit post", "post-form", view, fields, msg)
	})
}

// DeletePost serves POST /admin/posts/{id}/delete.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.deleted(w, r, h.Content.DeletePost(r.Context(), r.PathValue("id")), postsPath)
}

// --- events

const eventsPath = "/admin/events"

// AdminEvents serves GET /admin/events.
func (h *Handlers) AdminEvents(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	events, err := h.Content.ListEvents(r.Context(), limit, offset)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	items, paging := trimPage(events, page)
	d := h.adminPage(r, "Events", "admin-events")
	d.Notice = notice(r)
	d.Data = listView[*model.Event]{Items: items, Paging: paging}
	h.Render.Render(w, http.StatusOK, LayoutAdmin, d)
}

// NewEvent serves GET /admin/events/new.
func (h *Handlers) NewEvent(w http.ResponseWriter, r *http.Request) {
	view := formView[model.EventInput]{
		Mode:   FormModeCreate,
		Action: eventsPath,
		Input:  model.EventInput{Category: model.EventCategoryEvent},
		Extra:  model.EventCategories(),
	}
	h.renderForm(w, r, http.StatusOK, "New event", "event-form", view, nil, "")
}

// CreateEvent serves POST /admin/events.
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	in, perrs := parseEventForm(r)
	view := formView[model.EventInput]{Mode: FormModeCreate, Action: eventsPath, Input: in, Extra: model.EventCategories()}
	err := badForm(perrs)
	if err == nil {
		_, err = h.Content.CreateEvent(r.Context(), in)
	}
	h.saved(w, r, err, eventsPath, func(fields map[string]string, msg string) {
		h.renderForm(w, r, http.StatusBadRequest, "New event", "event-form", view, fields, msg)
	})
}

// EditEvent serves GET /admin/events/{id}.
func (h *Handlers) EditEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ev, err := h.Content.GetEvent(r.Context(), id)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	view := formView[model.EventInput]{
		Mode:   FormModeEdit,
		ID:     id,
		Action: eventsPath + "/" + id,
		Input:  model.InputFromEvent(ev),
		Extra:  model.EventCategories(),
	}
	h.renderForm(w, r, http.StatusOK, "Edit event", "event-form", view, nil, "")
}

// UpdateEvent serves POST /admin/events/{id}.
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, perrs := parseEventForm(r)
	view := formView[model.EventInput]{Mode: FormModeEdit, ID: id, Action: eventsPath + "/" + id, Input: in, Extra: model.EventCategories()}
	err := badForm(perrs)
	if err == nil {
		_, err = h.Content.UpdateEvent(r.Context(), id, in)
	}
	h.saved(w, r, err, eventsPath, func(fields map[string]string, msg string) {
		h.renderForm(w, r, http.StatusBadRequest, "Edit event", "event-form", view, fields, msg)
	})
}

// DeleteEvent serves POST /admin/events/{id}/delete.
func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	h.deleted(w, r, h.Content.DeleteEvent(r.Context(), r.PathValue("id")), eventsPath)
}

// --- publications

const publicationsPath = "/admin/publications"

// AdminPublications serves GET /admin/publications.
func (h *Handlers) AdminPublications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.Content.ListPublications(r.Context(), 0)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	d := h.adminPage(r, "Publications", "admin-publications")
	d.Notice = notice(r)
	d.Data = listView[*model.Publication]{Items: pubs, Paging: pagination{Page: 1}}
	h.Render.Render(w, http.StatusOK, LayoutAdmin, d)
}

// NewPublication serves GET /admin/publications/new.
func (h *Handlers) NewPublication(w http.ResponseWriter, r *http.Request) {
	view := formView[model.PublicationInput]{Mode: FormModeCreate, Action: publicationsPath}
	h.renderForm(w, r, http.StatusOK, "New publication", "publication-form", view, nil, "")
}

// CreatePublication serves POST /admin/publications.
func (h *Handlers) CreatePublication(w http.ResponseWriter, r *http.Request) {
	in, perrs := parsePublicationForm(r)
	view := formView[model.PublicationInput]{Mode: FormModeCreate, Action: publicationsPath, Input: in}
	err := badForm(perrs)
	if err == nil {
		_, err = h.Content.CreatePublication(r.Context(), in)
	}
	h.saved(w, r, err, publicationsPath, func(fields map[string]string, msg string) {
		h.renderForm(w, r, http.StatusBadRequest, "New publication", "publication-form", view, fields, msg)
	})
}

// EditPublication serves GET /admin/publications/{id}.
func (h *Handlers) EditPublication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pub, err := h.Content.GetPublication(r.Context(), id)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	view := formView[model.PublicationInput]{
		Mode:   FormModeEdit,
		ID:     id,
		Action: publicationsPath + "/" + id,
		Input:  model.InputFromPublication(pub),
		Extra:  pub,
	}
	h.renderForm(w, r, http.StatusOK, "Edit publication", "publication-form", view, nil, "")
}

// UpdatePublication serves POST /admin/publications/{id}.
func (h *Handlers) UpdatePublication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, perrs := parsePublicationForm(r)
	view := formView[model.PublicationInput]{Mode: FormModeEdit, ID: id, Action: publicationsPath + "/" + id, Input: in}
	err := badForm(perrs)
	if err == nil {
		_, err = h.Content.UpdatePublication(r.Context(), id, in)
	}
	h.saved(w, r, err, publicationsPath, func(fields map[string]string, msg string) {
		h.renderForm(w, r, http.StatusBadRequest, "Edit publication", "publication-form", view, fields, msg)
	})
}

// DeletePublication serves POST /admin/publications/{id}/delete.
func (h *Handlers) DeletePublication(w http.ResponseWriter, r *http.Request) {
	h.deleted(w, r, h.Content.DeletePublication(r.Context(), r.PathValue("id")), publicationsPath)
}

// --- users and placeholders

// Users serves GET /admin/users (super admins only).
func (h *Handlers) Users(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	profiles, err := h.Profiles.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	items, paging := trimPage(profiles, page)
	d := h.adminPage(r, "Users", "users")
	d.Data = listView[*domainauth.UserProfile]{Items: items, Paging: paging}
	h.Render.Render(w, http.StatusOK, LayoutAdmin, d)
}

// ComingSoon returns a placeholder admin page for a section not built yet.
func (h *Handlers) ComingSoon(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Render.Render(w, http.StatusOK, LayoutAdmin, h.adminPage(r, title, "coming-soon"))
	}
}
