package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"kamen/domain"
	"kamen/usecases"
)

//go:embed templates/*.html
var templates embed.FS

const voteAnchor = "/#vote"

// Handler serves the party page and its voting section.
type Handler struct {
	router chi.Router
	view   usecases.PollView
	logger zerolog.Logger
	page   *template.Template
}

// New builds the router. The page template is parsed once here.
func New(view usecases.PollView, logger zerolog.Logger) *Handler {
	h := &Handler{
		view:   view,
		logger: logger.With().Str("component", "web").Logger(),
		page:   template.Must(template.ParseFS(templates, "templates/page.html")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(h.logger))
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/vote", h.vote)
	r.Post("/reload", h.reload)
	r.Get("/api/polls", h.polls)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("web")
	})(next)
}

type optionItem struct {
	ID      int
	Text    string
	Votes   int
	Percent string
}

type pollItem struct {
	ID         int
	Question   string
	EndDate    string
	TotalVotes int
	Options    []optionItem
}

func toPollItem(p domain.Poll) pollItem {
	item := pollItem{
		ID:         p.ID,
		Question:   p.Question,
		EndDate:    p.EndDate,
		TotalVotes: p.TotalVotes,
		Options:    make([]optionItem, len(p.Options)),
	}
	for i, o := range p.Options {
		item.Options[i] = optionItem{
			ID:      o.ID,
			Text:    o.Text,
			Votes:   o.Votes,
			Percent: domain.FormatPercent(o.Votes, p.TotalVotes),
		}
	}
	return item
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	polls := h.view.Polls()
	items := make([]pollItem, len(polls))
	for i, p := range polls {
		items[i] = toPollItem(p)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, struct {
		Loading bool
		Polls   []pollItem
	}{
		Loading: h.view.Loading(),
		Polls:   items,
	}); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// vote forwards the form to the poll view. Whatever happens the user lands
// back on the voting section; failures only reach the log.
func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	pollID, err := strconv.Atoi(r.FormValue("poll_id"))
	if err != nil {
		log.Warn().Str("poll_id", r.FormValue("poll_id")).Msg("Bad poll_id in vote form")
		http.Redirect(w, r, voteAnchor, http.StatusSeeOther)
		return
	}
	optionID, err := strconv.Atoi(r.FormValue("option_id"))
	if err != nil {
		log.Warn().Str("option_id", r.FormValue("option_id")).Msg("Bad option_id in vote form")
		http.Redirect(w, r, voteAnchor, http.StatusSeeOther)
		return
	}

	// error already logged by the poll view
	_ = h.view.CastVote(r.Context(), pollID, optionID)
	http.Redirect(w, r, voteAnchor, http.StatusSeeOther)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	_ = h.view.Reload(r.Context())
	http.Redirect(w, r, voteAnchor, http.StatusSeeOther)
}

func (h *Handler) polls(w http.ResponseWriter, r *http.Request) {
	polls := h.view.Polls()
	if polls == nil {
		polls = []domain.Poll{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Polls   []domain.Poll `json:"polls"`
		Loading bool          `json:"loading"`
	}{polls, h.view.Loading()}); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to encode polls")
	}
}
