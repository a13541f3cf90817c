package httpx

import (
	"net/http"
	"time"

	"github.com/mpo-id/portal/internal/domain/model"
)

// Home serves GET /.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	home, err := h.Content.Home(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	d := h.page(w, r, "Muslim Postgraduate Organization", "home")
	d.Data = home
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}

type newsView struct {
	Category string
	Posts    []*model.Post
}

// News serves GET /news.
func (h *Handlers) News(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	posts, err := h.Content.News(r.Context(), category)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	d := h.page(w, r, "News", "news")
	d.Data = newsView{Category: category, Posts: posts}
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}

// Article serves GET /news/{slug}.
func (h *Handlers) Article(w http.ResponseWriter, r *http.Request) {
	d := h.page(w, r, "", "article")
	a, err := h.Content.Article(r.Context(), d.Locale, r.PathValue("slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d.Title = a.Post.Title(d.Locale)
	d.Data = a
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}

type eventsView struct {
	Category   string
	Categories []model.EventCategory
	Month      string
	Events     []*model.Event
}

// Events serves GET /events. ?month=YYYY-MM shows a calendar month;
// otherwise upcoming events, optionally filtered by ?category=.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := eventsView{Category: q.Get("category"), Categories: model.EventCategories()}

	var err error
	if m := q.Get("month"); m != "" {
		month, perr := time.Parse("2006-01", m)
		if perr != nil {
			h.NotFound(w, r)
			return
		}
		view.Month = m
		view.Events, err = h.Content.EventsInMonth(r.Context(), month)
	} else {
		view.Events, err = h.Content.Events(r.Context(), view.Category)
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	d := h.page(w, r, "Events", "events")
	d.Data = view
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}

// Publications serves GET /publications.
func (h *Handlers) Publications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.Content.Publications(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	d := h.page(w, r, "Publications", "publications")
	d.Data = pubs
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}

// DownloadPublication serves GET /publications/{id}/download by redirecting to the PDF.
func (h *Handlers) DownloadPublication(w http.ResponseWriter, r *http.Request) {
	url, err := h.Content.DownloadPublication(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Static returns a handler for a content-free page such as /about.
func (h *Handlers) Static(title, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Render.Render(w, http.StatusOK, LayoutPublic, h.page(w, r, title, page))
	}
}

// Unauthorized serves GET /unauthorized.
func (h *Handlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusForbidden, LayoutPublic, h.page(w, r, "Access denied", "unauthorized"))
}

type gamesView struct {
	Games []model.GameInfo
}

// GamesIndex serves GET /games.
func (h *Handlers) GamesIndex(w http.ResponseWriter, r *http.Request) {
	d := h.page(w, r, "Games", "games")
	d.Data = gamesView{Games: model.Games()}
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}

type gameView struct {
	Game   model.GameInfo
	Scores []*model.GameScore
}

// Game serves GET /games/{game} with its leaderboard.
func (h *Handlers) Game(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("game")
	scores, err := h.Games.Leaderboard(r.Context(), slug, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view := gameView{Scores: scores}
	for _, g := range model.Games() {
		if g.Slug == slug {
			view.Game = g
		}
	}
	d := h.page(w, r, view.Game.Title, "game")
	d.Data = view
	h.Render.Render(w, http.StatusOK, LayoutPublic, d)
}
