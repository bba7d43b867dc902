package handlers

import (
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/felo/chatfiles/internal/envelope"
	"github.com/go-chi/chi/v5"
)

// sanitizeFilename removes dangerous characters from attachment filenames
func sanitizeFilename(filename string) string {
	// Remove path separators
	filename = filepath.Base(filename)

	// Remove any control characters and quotes
	cleaned := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 || r == '"' || r == '\'' {
			return -1 // Remove character
		}
		return r
	}, filename)

	// Limit length
	if runes := []rune(cleaned); len(runes) > 255 {
		cleaned = string(runes[:255])
	}

	// Fallback if empty
	if cleaned == "" {
		cleaned = "attachment.txt"
	}

	return cleaned
}

// DownloadAttachment handles GET /api/messages/{id}/attachments/{index}.
// The index is matched against the FILE_INDEX value stored in the envelope,
// not the position in the block sequence.
func (h *Handlers) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	indexStr := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attachment index")
		return
	}

	msg, err := h.db.GetMessageByID(id)
	if err != nil {
		log.Printf("Error loading message: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load message")
		return
	}
	if msg == nil {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}

	// Pull the attachment content straight out of the stored body
	var found *envelope.Attachment
	for _, att := range envelope.Contents(msg.Body) {
		if att.Index == index {
			found = &att
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "Attachment not found")
		return
	}

	// Sanitize filename for the download header
	safeFilename := sanitizeFilename(found.Name) + ".txt"

	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{
			"filename": safeFilename,
		}))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(found.Content)))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	w.Write([]byte(found.Content))
}
