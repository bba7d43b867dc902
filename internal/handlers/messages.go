package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/felo/chatfiles/internal/db"
	"github.com/felo/chatfiles/internal/envelope"
	"github.com/felo/chatfiles/internal/extract"
	"github.com/felo/chatfiles/internal/indexer"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is the in-memory threshold for parsing uploads; larger
// parts spill to temp files.
const multipartMemory = 10 << 20

type listResponse struct {
	Messages []messageView `json:"messages"`
	Total    int           `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

// CreateMessage handles POST /api/messages: a multipart form with a text
// field and any number of file parts. Each file is extracted to text and
// wrapped in an envelope appended to the message body.
func (h *Handlers) CreateMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	text := r.FormValue("text")
	role := r.FormValue("role")
	if role == "" {
		role = "user"
	}
	if role != "user" && role != "assistant" {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}

	if strings.TrimSpace(text) == "" && len(files) == 0 {
		writeError(w, http.StatusBadRequest, "Message text or files required")
		return
	}

	// Extract files sequentially in part order, so envelope order equals
	// selection order. A file that cannot be read still gets an envelope;
	// no attachment is ever silently dropped.
	attachments := make([]envelope.Attachment, 0, len(files))
	for i, fh := range files {
		attachments = append(attachments, envelope.Attachment{
			Index:   i,
			Name:    fh.Filename,
			Content: h.extractUpload(fh),
		})
	}

	body := envelope.Encode(text, attachments)
	derived := indexer.Derive(body)

	msg := &db.Message{
		Role:            role,
		Body:            body,
		SearchText:      derived.SearchText,
		AttachmentNames: derived.AttachmentNames,
		AttachmentCount: derived.Count,
	}

	id, err := h.db.InsertMessage(msg)
	if err != nil {
		log.Printf("Error inserting message: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store message")
		return
	}

	if err := h.db.ReplaceAttachments(id, derived.Rows); err != nil {
		log.Printf("Error storing attachment rows: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store attachments")
		return
	}

	created, err := h.db.GetMessageByID(id)
	if err != nil || created == nil {
		log.Printf("Error reloading message %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to load message")
		return
	}

	writeJSON(w, http.StatusCreated, newMessageView(created))
}

// extractUpload reads one uploaded file and converts it to text. Read
// failures become the file's envelope content instead of failing the send.
func (h *Handlers) extractUpload(fh *multipart.FileHeader) string {
	f, err := fh.Open()
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}

	return h.engine.Extract(extract.File{Name: fh.Filename, Data: data})
}

// ListMessages handles GET /api/messages with pagination
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	offset := parseOffset(r)

	messages, err := h.db.ListMessages(limit, offset)
	if err != nil {
		log.Printf("Error listing messages: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	total, err := h.db.CountMessages()
	if err != nil {
		log.Printf("Error counting messages: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to count messages")
		return
	}

	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, newMessageView(msg))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Messages: views,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetMessage handles GET /api/messages/{id}, returning the decoded view
func (h *Handlers) GetMessage(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
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

	writeJSON(w, http.StatusOK, newMessageView(msg))
}

// GetMessageRaw handles GET /api/messages/{id}/raw, returning the stored
// body verbatim, envelopes included
func (h *Handlers) GetMessageRaw(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
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

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(msg.Body))
}

// DeleteMessage handles DELETE /api/messages/{id}
func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message ID")
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

	if err := h.db.DeleteMessage(id); err != nil {
		log.Printf("Error deleting message: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
