package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/felo/chatfiles/internal/db"
)

type searchResult struct {
	ID              int64     `json:"id"`
	Role            string    `json:"role"`
	Snippet         string    `json:"snippet"`
	AttachmentCount int       `json:"attachment_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Count   int            `json:"count"`
}

// Search handles GET /api/search. The q parameter is required; role and
// attachments narrow the results, offset pages through them.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "Search query required")
		return
	}

	limit := parseLimit(r, 50)
	offset := parseOffset(r)
	role := r.URL.Query().Get("role")
	hasAttachments := r.URL.Query().Get("attachments") == "true"

	var results []*db.MessageSearchResult
	var err error
	if role == "" && !hasAttachments && offset == 0 {
		results, err = h.db.SearchMessages(query, limit)
	} else {
		results, err = h.db.SearchMessagesWithFilters(query, role, hasAttachments, limit, offset)
	}
	if err != nil {
		log.Printf("Search error: %v", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, result := range results {
		out = append(out, searchResult{
			ID:              result.ID,
			Role:            result.Role,
			Snippet:         result.Snippet,
			AttachmentCount: result.AttachmentCount,
			CreatedAt:       result.GetCreatedAt(),
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results: out,
		Count:   len(out),
	})
}
