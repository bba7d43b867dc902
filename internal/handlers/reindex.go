package handlers

import (
	"log"
	"net/http"

	"github.com/felo/chatfiles/internal/indexer"
)

type reindexResponse struct {
	Total     int    `json:"total"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration"`
}

// Reindex handles POST /api/reindex. Only one reindex may run at a time;
// a second trigger while one is in flight gets a 409.
func (h *Handlers) Reindex(w http.ResponseWriter, r *http.Request) {
	if !h.reindexMu.TryLock() {
		writeError(w, http.StatusConflict, "Reindex already in progress")
		return
	}
	defer h.reindexMu.Unlock()

	idx := indexer.New(h.db)
	result, err := idx.Reindex()
	if err != nil {
		log.Printf("Reindex error: %v", err)
		writeError(w, http.StatusInternalServerError, "Reindex failed")
		return
	}

	writeJSON(w, http.StatusOK, reindexResponse{
		Total:     result.Total,
		Updated:   result.Updated,
		Unchanged: result.Unchanged,
		Failed:    result.Failed,
		Duration:  result.Duration.String(),
	})
}
