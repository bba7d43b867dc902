package indexer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/felo/chatfiles/internal/db"
	"github.com/felo/chatfiles/internal/envelope"
)

// batchSize is how many messages the reindexer loads per query
const batchSize = 500

// Derived holds the columns and attachment rows computed from a message
// body. Insert and reindex both go through Derive so the derived data can
// never disagree about how a body decodes.
type Derived struct {
	SearchText      string
	AttachmentNames string
	Count           int
	Rows            []*db.Attachment
}

// Derive decodes a message body and computes its derived search columns
// and attachment rows
func Derive(body string) Derived {
	decoded := envelope.Decode(body)

	names := make([]string, 0, len(decoded.Attachments))
	for _, att := range decoded.Attachments {
		names = append(names, att.Name)
	}

	contents := envelope.Contents(body)
	rows := make([]*db.Attachment, 0, len(contents))
	for _, att := range contents {
		rows = append(rows, &db.Attachment{
			FileIndex:    att.Index,
			Filename:     att.Name,
			ContentBytes: int64(len(att.Content)),
		})
	}

	return Derived{
		SearchText:      decoded.DisplayText,
		AttachmentNames: strings.Join(names, " "),
		Count:           len(decoded.Attachments),
		Rows:            rows,
	}
}

// Indexer rebuilds the derived search columns from message bodies
type Indexer struct {
	db      *db.DB
	verbose bool
}

// New creates a new indexer
func New(database *db.DB) *Indexer {
	return &Indexer{db: database}
}

// WithVerbose enables progress logging
func (idx *Indexer) WithVerbose(verbose bool) *Indexer {
	idx.verbose = verbose
	return idx
}

// Result contains statistics about a reindex run
type Result struct {
	Total     int
	Updated   int
	Unchanged int
	Failed    int
	FailedIDs []int64
	Duration  time.Duration
}

// Reindex walks every message in id order, decodes its body fresh, and
// rewrites any derived columns and attachment rows that drifted. The body
// itself is never modified. Messages are processed sequentially; the store
// runs on a single connection anyway.
func (idx *Indexer) Reindex() (*Result, error) {
	start := time.Now()
	result := &Result{FailedIDs: make([]int64, 0)}

	var afterID int64
	for {
		batch, err := idx.db.ListMessagesByID(afterID, batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load messages: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, msg := range batch {
			result.Total++
			switch idx.processMessage(msg) {
			case statusUpdated:
				result.Updated++
			case statusUnchanged:
				result.Unchanged++
			case statusFailed:
				result.Failed++
				result.FailedIDs = append(result.FailedIDs, msg.ID)
			}

			if idx.verbose && result.Total%100 == 0 {
				log.Printf("Reindexed %d messages...\n", result.Total)
			}
		}

		afterID = batch[len(batch)-1].ID
	}

	if err := idx.db.SetSetting(db.SettingLastReindex, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to record reindex time: %w", err)
	}

	result.Duration = time.Since(start)

	if idx.verbose {
		log.Printf("Reindex complete: %d total, %d updated, %d unchanged, %d failed\n",
			result.Total, result.Updated, result.Unchanged, result.Failed)
	}

	return result, nil
}

type reindexStatus int

const (
	statusUpdated reindexStatus = iota
	statusUnchanged
	statusFailed
)

// processMessage re-derives one message and returns what happened to it
func (idx *Indexer) processMessage(msg *db.Message) reindexStatus {
	derived := Derive(msg.Body)

	if msg.SearchText == derived.SearchText &&
		msg.AttachmentNames == derived.AttachmentNames &&
		msg.AttachmentCount == derived.Count {
		return statusUnchanged
	}

	if err := idx.db.UpdateDerived(msg.ID, derived.SearchText, derived.AttachmentNames, derived.Count); err != nil {
		log.Printf("Error updating message %d: %v\n", msg.ID, err)
		return statusFailed
	}

	if err := idx.db.ReplaceAttachments(msg.ID, derived.Rows); err != nil {
		log.Printf("Error rewriting attachment rows for message %d: %v\n", msg.ID, err)
		return statusFailed
	}

	return statusUpdated
}
