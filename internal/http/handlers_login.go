package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/authz"
	"github.com/mpo-id/portal/internal/domain/model"
	"github.com/mpo-id/portal/internal/service"
)

const msgLoginUnavailable = "Sign-in is temporarily unavailable. Please try again."

type loginView struct {
	Email      string
	RedirectTo string
}

// LoginPage serves GET /admin/login.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	d := h.page(w, r, "Admin sign in", "login")
	d.Data = loginView{RedirectTo: r.URL.Query().Get(authz.RedirectParam)}
	h.Render.Render(w, http.StatusOK, LayoutBare, d)
}

// LoginSubmit serves POST /admin/login. Failures re-render the form and
// never redirect.
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := service.LoginForm{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		RedirectTo: r.PostFormValue(authz.RedirectParam),
	}

	jar := newRequestJar(r)
	_, err := h.Login.SignIn(r.Context(), jar, form)
	jar.Flush(w)
	if err == nil {
		http.Redirect(w, r, service.SafeRedirect(form.RedirectTo, authz.AdminPath), http.StatusSeeOther)
		return
	}

	d := h.page(w, r, "Admin sign in", "login")
	d.Data = loginView{Email: form.Email, RedirectTo: form.RedirectTo}
	status := http.StatusOK
	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		d.Error = "Invalid email or password."
	case isNoAdmin(err):
		d.Error = err.Error()
	default:
		if fe, ok := model.AsFieldErrors(err); ok {
			d.Fields = fe
			d.Error = "Please enter your email and password."
			status = http.StatusBadRequest
		} else {
			h.logger().ErrorContext(r.Context(), "admin login failed", "error", err)
			d.Error = msgLoginUnavailable
		}
	}
	h.Render.Render(w, status, LayoutBare, d)
}

// Logout serves POST /admin/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	jar := newRequestJar(r)
	if err := h.Login.SignOut(r.Context(), jar); err != nil {
		h.logger().WarnContext(r.Context(), "sign out failed", "error", err)
	}
	jar.Flush(w)
	http.Redirect(w, r, authz.AdminLoginPath, http.StatusSeeOther)
}
