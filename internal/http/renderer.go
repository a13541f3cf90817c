package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/mpo-id/portal/internal/domain/auth"
	"github.com/mpo-id/portal/internal/domain/model"
)

// Layout names defined in the template set.
const (
	LayoutPublic = "layout"
	LayoutAdmin  = "admin-layout"
	LayoutBare   = "bare-layout"
)

// PageData is what every page template receives.
type PageData struct {
	Title     string
	Page      string // content template is Page + "-content"
	Path      string
	Locale    model.Locale
	CSRFToken string

	Profile *domainauth.UserProfile
	Nav     []NavItem

	Error  string
	Fields map[string]string
	Notice string

	Data any
}

// Renderer renders HTML pages from one parsed template set.
type Renderer struct {
	t      *template.Template
	logger *slog.Logger
}

// RendererConfig holds configuration for creating a Renderer.
type RendererConfig struct {
	TemplateFS fs.FS // Required; rooted at the templates directory
	Logger     *slog.Logger
}

// NewRenderer parses every template in cfg.TemplateFS.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{logger: logger}

	t, err := template.New("root").Funcs(r.funcs()).ParseFS(cfg.TemplateFS,
		"*.tmpl",
		"pages/*.tmpl",
		"admin/*.tmpl",
	)
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err))
		return nil, err
	}
	r.t = t
	return r, nil
}

// Render executes layout with data and writes it with status.
func (r *Renderer) Render(w http.ResponseWriter, status int, layout string, data PageData) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, layout, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("layout", layout),
			slog.String("page", data.Page),
			slog.Any("error", err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("write rendered page", slog.Any("error", err))
	}
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"renderSection": func(page string, data any) (template.HTML, error) {
			var buf bytes.Buffer
			if err := r.t.ExecuteTemplate(&buf, page+"-content", data); err != nil {
				return "", err
			}
			// #nosec G203 - produced by html/template from the same trusted set.
			return template.HTML(buf.String()), nil
		},
		"formatDate": func(t any, l model.Locale) string {
			switch v := t.(type) {
			case time.Time:
				return model.FormatDate(v, l)
			case *time.Time:
				if v != nil {
					return model.FormatDate(*v, l)
				}
			}
			return ""
		},
		"inputDate": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				if !v.IsZero() {
					return v.Format("2006-01-02T15:04")
				}
			case *time.Time:
				if v != nil && !v.IsZero() {
					return v.Format("2006-01-02T15:04")
				}
			}
			return ""
		},
		"truncate": truncate,
		"add":      func(a, b int) int { return a + b },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefInt": func(n *int) int {
			if n == nil {
				return 0
			}
			return *n
		},
		"otherLocale": func(l model.Locale) model.Locale {
			if l == model.LocaleID {
				return model.LocaleEN
			}
			return model.LocaleID
		},
		"t": translate,
		"deleteAction": func(action, token string) deleteAction {
			return deleteAction{Action: action, Token: token}
		},
	}
}

// deleteAction feeds the shared delete-button template.
type deleteAction struct {
	Action string
	Token  string
}

// truncate shortens text to limit runes, appending an ellipsis when cut.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

// uiStrings holds the Indonesian labels for the public navigation.
var uiStrings = map[string]string{
	"Home":         "Beranda",
	"News":         "Berita",
	"Events":       "Acara",
	"Publications": "Publikasi",
	"Games":        "Permainan",
	"About":        "Tentang",
	"Contact":      "Kontak",
	"Read more":    "Baca selengkapnya",
	"Upcoming":     "Akan datang",
	"Download":     "Unduh",
	"Related":      "Berita terkait",
	"views":        "dilihat",
}

func translate(l model.Locale, s string) string {
	if l == model.LocaleID {
		if v, ok := uiStrings[s]; ok {
			return v
		}
	}
	return s
}
