package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/felo/chatfiles/internal/config"
	"github.com/felo/chatfiles/internal/db"
	"github.com/felo/chatfiles/internal/envelope"
	"github.com/felo/chatfiles/internal/extract"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	db     *db.DB
	cfg    *config.Config
	engine *extract.Engine

	reindexMu sync.Mutex
}

// New creates a new Handlers instance
func New(database *db.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		db:  database,
		cfg: cfg,
		engine: extract.NewEngine(extract.Config{
			MaxPDFPages: cfg.MaxPDFPages,
		}),
	}
}

// Router builds the chi router with all API routes and middleware
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Route("/api", func(r chi.Router) {
		r.Post("/messages", h.CreateMessage)
		r.Get("/messages", h.ListMessages)
		r.Get("/messages/{id}", h.GetMessage)
		r.Get("/messages/{id}/raw", h.GetMessageRaw)
		r.Get("/messages/{id}/attachments/{index}", h.DownloadAttachment)
		r.Delete("/messages/{id}", h.DeleteMessage)
		r.Get("/search", h.Search)
		r.Get("/attachments/names", h.AttachmentNames)
		r.Get("/stats", h.Stats)
		r.Post("/reindex", h.Reindex)
	})

	return r
}

// messageView is the decoded JSON representation of a stored message.
// It is always rebuilt from the body, never read from the derived columns.
type messageView struct {
	ID              int64                     `json:"id"`
	Role            string                    `json:"role"`
	DisplayText     string                    `json:"display_text"`
	Attachments     []envelope.AttachmentInfo `json:"attachments"`
	AttachmentCount int                       `json:"attachment_count"`
	CreatedAt       time.Time                 `json:"created_at"`
}

func newMessageView(msg *db.Message) messageView {
	decoded := envelope.Decode(msg.Body)
	return messageView{
		ID:              msg.ID,
		Role:            msg.Role,
		DisplayText:     decoded.DisplayText,
		Attachments:     decoded.Attachments,
		AttachmentCount: len(decoded.Attachments),
		CreatedAt:       msg.GetCreatedAt(),
	}
}

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseLimit reads a positive limit query parameter, falling back to def
func parseLimit(r *http.Request, def int) int {
	limit := def
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

// parseOffset reads a non-negative offset query parameter
func parseOffset(r *http.Request) int {
	offset := 0
	if param := r.URL.Query().Get("offset"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return offset
}
