package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/model"
	apperrors "github.com/mpo-id/portal/internal/errors"
	"github.com/mpo-id/portal/internal/ports"
	"github.com/mpo-id/portal/internal/service"
)

const localeCookie = "lang"

// Handlers serves the browser-facing pages and the game API.
type Handlers struct {
	Render    *Renderer
	Login     *service.AdminLoginService
	Content   *service.ContentService
	Dashboard *service.DashboardService
	Games     *service.GameService
	Profiles  ports.ProfileStore
	Logger    *slog.Logger
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// locale picks the content language from ?lang=, then the lang cookie.
// An explicit ?lang= is remembered in the cookie.
func locale(w http.ResponseWriter, r *http.Request) model.Locale {
	if q := r.URL.Query().Get("lang"); q != "" {
		l := model.ParseLocale(q)
		http.SetCookie(w, &http.Cookie{
			Name:     localeCookie,
			Value:    string(l),
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			SameSite: http.SameSiteLaxMode,
		})
		return l
	}
	if c, err := r.Cookie(localeCookie); err == nil {
		return model.ParseLocale(c.Value)
	}
	return model.LocaleEN
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request, title, page string) PageData {
	return PageData{
		Title:     title,
		Page:      page,
		Path:      r.URL.Path,
		Locale:    locale(w, r),
		CSRFToken: CSRFToken(r),
	}
}

func (h *Handlers) adminPage(r *http.Request, title, page string) PageData {
	p, _ := ProfileFromContext(r.Context())
	role := domainauth.RoleNone
	if p != nil {
		role = p.Role
	}
	return PageData{
		Title:     title,
		Page:      page,
		Path:      r.URL.Path,
		Locale:    model.LocaleEN,
		CSRFToken: CSRFToken(r),
		Profile:   p,
		Nav:       AdminNav(role, r.URL.Path),
	}
}

// NotFound renders the public 404 page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusNotFound, LayoutPublic, h.page(w, r, "Not found", "not-found"))
}

// serverError logs err and renders a generic failure page.
func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	d := h.page(w, r, "Something went wrong", "error")
	h.Render.Render(w, http.StatusInternalServerError, LayoutPublic, d)
}

// fail routes a service error to the 404 page or the error page.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsNotFound(err) {
		h.NotFound(w, r)
		return
	}
	h.serverError(w, r, err)
}

// formError returns field errors and a banner message for a failed admin save.
func formError(err error) (map[string]string, string, bool) {
	if fe, ok := model.AsFieldErrors(err); ok {
		return fe, "Please fix the errors below.", true
	}
	if apperrors.IsConflict(err) || apperrors.IsValidation(err) {
		msg := apperrors.UserMessage(err, "The submitted data is invalid.")
		fields := map[string]string{}
		if f := apperrors.GetField(err); f != "" {
			fields[f] = msg
		}
		return fields, msg, true
	}
	return nil, "", false
}

// isNoAdmin reports whether err is the login service's non-admin rejection.
func isNoAdmin(err error) bool { return errors.Is(err, service.ErrNoAdminAccess) }

// NavItem is one admin sidebar entry.
type NavItem struct {
	Label  string
	Href   string
	Badge  string
	Active bool
}

type navEntry struct {
	label string
	href  string
	badge string
	roles []domainauth.Role // nil means every admin role
}

var adminNav = []navEntry{
	{label: "Dashboard", href: "/admin"},
	{label: "Posts", href: "/admin/posts"},
	{label: "Events", href: "/admin/events"},
	{label: "Publications", href: "/admin/publications"},
	{label: "Users", href: "/admin/users", roles: []domainauth.Role{domainauth.RoleSuperAdmin}},
	{label: "Shop", href: "/admin/shop", badge: "Soon", roles: []domainauth.Role{domainauth.RoleSuperAdmin, domainauth.RoleShopAdmin}},
	{label: "Discussions", href: "/admin/discussions", badge: "Soon", roles: []domainauth.Role{domainauth.RoleSuperAdmin, domainauth.RoleDiscussionAdmin}},
}

// AdminNav returns the sidebar entries visible to role, marking the one for path active.
func AdminNav(role domainauth.Role, path string) []NavItem {
	out := make([]NavItem, 0, len(adminNav))
	for _, e := range adminNav {
		if e.roles == nil && !role.IsAdmin() {
			continue
		}
		if e.roles != nil && !role.In(e.roles...) {
			continue
		}
		active := path == e.href || (e.href != "/admin" && strings.HasPrefix(path, e.href+"/"))
		out = append(out, NavItem{Label: e.label, Href: e.href, Badge: e.badge, Active: active})
	}
	return out
}
