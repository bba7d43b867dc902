package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var apiClient = &http.Client{Timeout: 60 * time.Second}

// Response shapes returned by the JSON API.

type attachmentInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type messageView struct {
	ID              int64            `json:"id"`
	Role            string           `json:"role"`
	DisplayText     string           `json:"display_text"`
	Attachments     []attachmentInfo `json:"attachments"`
	AttachmentCount int              `json:"attachment_count"`
	CreatedAt       time.Time        `json:"created_at"`
}

type listResponse struct {
	Messages []messageView `json:"messages"`
	Total    int           `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

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

type statsResponse struct {
	TotalMessages    int        `json:"total_messages"`
	WithAttachments  int        `json:"with_attachments"`
	TotalAttachments int        `json:"total_attachments"`
	LastMessageAt    *time.Time `json:"last_message_at"`
	LastReindexAt    *time.Time `json:"last_reindex_at"`
}

type reindexResponse struct {
	Total     int    `json:"total"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration"`
}

// apiURL joins the configured server base URL with an API path
func apiURL(path string) string {
	return strings.TrimRight(serverURL, "/") + path
}

// getJSON performs a GET request and decodes the JSON response into out
func getJSON(path string, out interface{}) error {
	resp, err := apiClient.Get(apiURL(path))
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse checks the status code and decodes a JSON body into out.
// A nil out skips body decoding, for responses without content.
func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError turns a non-2xx response into an error, using the server's
// {"error": ...} body when present
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}

// firstLine collapses text to its first non-empty line, truncated to max runes
func firstLine(text string, max int) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > max {
			return string(runes[:max]) + "..."
		}
		return line
	}
	return ""
}

// stripMarks removes the <mark> highlight tags from search snippets
func stripMarks(snippet string) string {
	snippet = strings.ReplaceAll(snippet, "<mark>", "")
	return strings.ReplaceAll(snippet, "</mark>", "")
}
