package db

import (
	"fmt"
	"strings"
)

// MessageSearchResult represents a search result with snippet
type MessageSearchResult struct {
	Message
	Snippet string
}

// SearchMessages performs a full-text search on messages using FTS5
func (db *DB) SearchMessages(query string, limit int) ([]*MessageSearchResult, error) {
	if query == "" {
		// If no query, just return recent messages
		messages, err := db.ListMessages(limit, 0)
		if err != nil {
			return nil, err
		}

		results := make([]*MessageSearchResult, len(messages))
		for i, msg := range messages {
			results[i] = &MessageSearchResult{
				Message: *msg,
				Snippet: truncateText(msg.SearchText, 200),
			}
		}
		return results, nil
	}

	// Build FTS5 MATCH query with fuzzy matching
	// Add wildcards to each term for fuzzy matching: "quarterly report" -> "quarterly"* "report"*
	fuzzyQuery := buildFuzzyQuery(query)

	sql := `
		SELECT
			m.id, m.role, m.body, m.search_text, m.attachment_names,
			m.attachment_count, m.created_at, m.updated_at,
			snippet(messages_fts, 0, '<mark>', '</mark>', '...', 32) as snippet
		FROM messages m
		JOIN messages_fts ON m.id = messages_fts.rowid
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`

	rows, err := db.Query(sql, fuzzyQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	var results []*MessageSearchResult
	for rows.Next() {
		result := &MessageSearchResult{}
		err := rows.Scan(
			&result.ID, &result.Role, &result.Body, &result.SearchText, &result.AttachmentNames,
			&result.AttachmentCount, &result.CreatedAt, &result.UpdatedAt,
			&result.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

// SearchMessagesWithFilters performs a search with additional filters and pagination
func (db *DB) SearchMessagesWithFilters(query, role string, hasAttachments bool, limit, offset int) ([]*MessageSearchResult, error) {
	// Build WHERE clause
	var conditions []string
	var args []interface{}

	// FTS5 search
	if query != "" {
		conditions = append(conditions, "messages_fts MATCH ?")
		args = append(args, buildFuzzyQuery(query))
	}

	// Role filter
	if role != "" {
		conditions = append(conditions, "m.role = ?")
		args = append(args, role)
	}

	// Attachments filter
	if hasAttachments {
		conditions = append(conditions, "m.attachment_count > 0")
	}

	// Build SQL query
	sqlQuery := `
		SELECT
			m.id, m.role, m.body, m.search_text, m.attachment_names,
			m.attachment_count, m.created_at, m.updated_at
	`

	if query != "" {
		sqlQuery += `, snippet(messages_fts, 0, '<mark>', '</mark>', '...', 32) as snippet
		FROM messages m
		JOIN messages_fts ON m.id = messages_fts.rowid
		`
	} else {
		sqlQuery += `, '' as snippet
		FROM messages m
		`
	}

	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	if query != "" {
		sqlQuery += " ORDER BY rank"
	} else {
		sqlQuery += " ORDER BY m.created_at DESC, m.id DESC"
	}

	sqlQuery += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search with filters: %w", err)
	}
	defer rows.Close()

	var results []*MessageSearchResult
	for rows.Next() {
		result := &MessageSearchResult{}
		err := rows.Scan(
			&result.ID, &result.Role, &result.Body, &result.SearchText, &result.AttachmentNames,
			&result.AttachmentCount, &result.CreatedAt, &result.UpdatedAt,
			&result.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan filtered result: %w", err)
		}

		// Generate snippet if not from FTS5
		if result.Snippet == "" {
			result.Snippet = truncateText(result.SearchText, 200)
		}

		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filtered results: %w", err)
	}

	return results, nil
}

// buildFuzzyQuery turns free text into an FTS5 MATCH expression. Each term
// is quoted so punctuation cannot break the query syntax, with a trailing
// wildcard for prefix matching.
func buildFuzzyQuery(query string) string {
	terms := strings.Fields(query)
	fuzzyTerms := make([]string, len(terms))
	for i, term := range terms {
		// Escape embedded quotes per FTS5 string syntax
		term = strings.ReplaceAll(term, `"`, `""`)
		fuzzyTerms[i] = `"` + term + `"*`
	}
	return strings.Join(fuzzyTerms, " ")
}

// truncateText truncates text to maxLen characters
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
