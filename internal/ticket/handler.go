package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mamisoa/lego/internal/httpapi"
)

// uploads are photographed receipts, allow a few MB
const maxUploadSize = 10 << 20

const uploadPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Upload Ticket</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .upload-container { max-width: 480px; margin: 0 auto; border: 1px solid #ddd; padding: 24px; border-radius: 8px; }
        .message { color: #16a34a; }
        button { margin-top: 12px; }
    </style>
</head>
<body>
    <div class="upload-container">
        <h2>Upload a ticket</h2>
        {{if .Message}}<p class="message">{{.Message}}</p>{{end}}
        <form action="/uploadTicket" method="post" enctype="multipart/form-data">
            <input type="file" name="file" accept="image/jpeg" required>
            <br>
            <button type="submit">Upload</button>
        </form>
    </div>
</body>
</html>
`

var uploadPageTmpl = template.Must(template.New("upload").Parse(uploadPageHTML))

type Handler struct {
	store   *Store
	forward *Forwarder
}

// NewRouter wires the ticket endpoints.
func NewRouter(store *Store, forward *Forwarder) http.Handler {
	h := &Handler{store: store, forward: forward}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpapi.Logging)
	r.Use(httpapi.MaxBytes(maxUploadSize))

	r.Get("/", h.root)
	r.Post("/generateTicket", h.generateTicket)
	r.Get("/viewTicket", h.viewTicket)
	r.Get("/uploadTicket", h.uploadForm)
	r.Post("/uploadTicket", h.uploadTicket)

	return r
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

func (h *Handler) generateTicket(w http.ResponseWriter, r *http.Request) {
	var results []Result
	if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
		httpapi.WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid ticket payload: " + err.Error()})
		return
	}

	for _, res := range results {
		var buf bytes.Buffer
		if err := Render(&buf, res.Output); err != nil {
			slog.Error("failed to render receipt", "error", err)
			httpapi.WriteJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to render receipt"})
			return
		}
		if err := h.store.Save(buf.Bytes()); err != nil {
			slog.Error("failed to store receipt", "error", err)
			httpapi.WriteJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to store receipt"})
			return
		}
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"message": "HTML ticket generated successfully!"})
}

func (h *Handler) viewTicket(w http.ResponseWriter, r *http.Request) {
	if !h.store.Exists() {
		httpapi.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Ticket not found. Please generate a ticket first."})
		return
	}
	http.ServeFile(w, r, h.store.Path())
}

func (h *Handler) uploadForm(w http.ResponseWriter, r *http.Request) {
	h.renderUploadPage(w, "")
}

func (h *Handler) uploadTicket(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Invalid file type. Only JPG images are accepted.")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	// hand the scan to the workflow engine without blocking the response
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.forward.Send(ctx, header.Filename, content, contentType); err != nil {
			slog.Error("failed to forward ticket to webhook", "file", header.Filename, "error", err)
		}
	}()

	h.renderUploadPage(w, "File uploaded successfully and sent to the webhook!")
}

func (h *Handler) renderUploadPage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ Message string }{Message: message}
	if err := uploadPageTmpl.Execute(w, data); err != nil {
		slog.Error("failed to render upload page", "error", err)
	}
}
