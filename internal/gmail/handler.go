package gmail

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mamisoa/lego/internal/httpapi"
)

// DraftParams mirrors the createDraftEmail request body.
type DraftParams struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// defaultDraftContent is the canned acknowledgment used when a draft
// request carries no body of its own.
const defaultDraftContent = "<html><body><p>Bonjour, nous allons répondre à votre email dans les plus brefs délais.</p></body></html>"

// Handler serves the mailbox operations over HTTP.
type Handler struct {
	mail *Mailbox
}

// NewRouter wires the service routes.
func NewRouter(mail *Mailbox) chi.Router {
	h := &Handler{mail: mail}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpapi.Logging)
	r.Use(httpapi.MaxBytes(1 << 20))

	r.Get("/", h.root)
	r.Get("/last5", h.lastFive)
	r.Post("/getNewEmail", h.fetchNew)
	r.Post("/createDraftEmail", h.createDraft)
	return r
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"app": "gmail server"})
}

func (h *Handler) lastFive(w http.ResponseWriter, r *http.Request) {
	emails, err := h.mail.Latest(r.Context(), h.mail.DefaultEmail)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusBadGateway, map[string]string{"detail": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, emails)
}

func (h *Handler) fetchNew(w http.ResponseWriter, r *http.Request) {
	var params FetchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body: " + err.Error()})
		return
	}
	emails, err := h.mail.Fetch(r.Context(), params)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusBadGateway, map[string]string{"detail": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, emails)
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	var params DraftParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body: " + err.Error()})
		return
	}
	if params.Content == "" {
		params.Content = defaultDraftContent
	}
	draft, err := h.mail.CreateDraft(r.Context(), params.Subject, params.Content, h.mail.DefaultEmail)
	if err != nil {
		httpapi.WriteJSON(w, http.StatusBadGateway, map[string]string{"detail": err.Error()})
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, draft)
}
