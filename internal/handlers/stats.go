package handlers

import (
	"log"
	"net/http"
	"time"
)

type statsResponse struct {
	TotalMessages    int        `json:"total_messages"`
	WithAttachments  int        `json:"with_attachments"`
	TotalAttachments int        `json:"total_attachments"`
	LastMessageAt    *time.Time `json:"last_message_at"`
	LastReindexAt    *time.Time `json:"last_reindex_at"`
}

// Stats handles GET /api/stats
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetStats()
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	resp := statsResponse{
		TotalMessages:    stats.TotalMessages,
		WithAttachments:  stats.WithAttachments,
		TotalAttachments: stats.TotalAttachments,
	}
	// Zero times serialize as null rather than year one
	if !stats.LastMessageAt.IsZero() {
		t := stats.LastMessageAt
		resp.LastMessageAt = &t
	}
	if !stats.LastReindexAt.IsZero() {
		t := stats.LastReindexAt
		resp.LastReindexAt = &t
	}

	writeJSON(w, http.StatusOK, resp)
}
