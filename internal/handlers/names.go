package handlers

import (
	"log"
	"net/http"
)

type attachmentName struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
}

// AttachmentNames handles GET /api/attachments/names, the autocomplete feed
// of distinct attachment filenames ordered by frequency
func (h *Handlers) AttachmentNames(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)

	names, err := h.db.TopAttachmentNames(limit)
	if err != nil {
		log.Printf("Failed to get attachment names: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load attachment names")
		return
	}

	out := make([]attachmentName, 0, len(names))
	for _, name := range names {
		out = append(out, attachmentName{
			Filename: name.Filename,
			Count:    name.Count,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
