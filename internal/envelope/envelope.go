package envelope

import (
	"strconv"
	"strings"
)

// Tag names are a persisted wire format. Messages encoded with them live in
// the database forever, so they must never change.
const (
	attachmentOpen  = "<ATTACHMENT_FILE>"
	attachmentClose = "</ATTACHMENT_FILE>"
	indexOpen       = "<FILE_INDEX>"
	indexClose      = "</FILE_INDEX>"
	nameOpen        = "<FILE_NAME>"
	nameClose       = "</FILE_NAME>"
	contentOpen     = "<FILE_CONTENT>"
	contentClose    = "</FILE_CONTENT>"
)

// Attachment is one file's contribution to a message body: its position in
// the selection at send time, its filename, and its extracted text.
type Attachment struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// AttachmentInfo identifies an attachment without its content.
type AttachmentInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Decoded is the display view of a message: the text a human typed and the
// attachments that were carried alongside it.
type Decoded struct {
	DisplayText string           `json:"display_text"`
	Attachments []AttachmentInfo `json:"attachments"`
}

// Encode appends one envelope block per attachment to the typed text and
// returns the full message body. Indices are written as given; the encoder
// never renumbers them.
func Encode(text string, atts []Attachment) string {
	var b strings.Builder
	b.WriteString(text)
	for _, a := range atts {
		b.WriteString("\n\n")
		b.WriteString(attachmentOpen)
		b.WriteString("\n")
		b.WriteString(indexOpen)
		b.WriteString(strconv.Itoa(a.Index))
		b.WriteString(indexClose)
		b.WriteString("\n")
		b.WriteString(nameOpen)
		b.WriteString(a.Name)
		b.WriteString(nameClose)
		b.WriteString("\n")
		b.WriteString(contentOpen)
		b.WriteString("\n")
		b.WriteString(a.Content)
		b.WriteString("\n")
		b.WriteString(contentClose)
		b.WriteString("\n")
		b.WriteString(attachmentClose)
		b.WriteString("\n")
	}
	return b.String()
}

// Decode strips every envelope block out of message and reports the
// attachments found, in the order they appeared. Blocks missing an index or
// a name are removed from the display text but not counted; a hand-edited
// or truncated message should degrade, not error. Decode is pure; calling
// it any number of times on the same input yields the same result.
func Decode(message string) Decoded {
	var display strings.Builder
	atts := []AttachmentInfo{}

	rest := message
	for {
		start := strings.Index(rest, attachmentOpen)
		if start < 0 {
			display.WriteString(rest)
			break
		}
		inner := rest[start+len(attachmentOpen):]
		end := strings.Index(inner, attachmentClose)
		if end < 0 {
			// Unterminated open tag: not an envelope, keep the text as-is.
			display.WriteString(rest)
			break
		}
		display.WriteString(rest[:start])
		if info, ok := parseBlock(inner[:end]); ok {
			atts = append(atts, info)
		}
		rest = inner[end+len(attachmentClose):]
	}

	return Decoded{
		DisplayText: strings.TrimSpace(display.String()),
		Attachments: atts,
	}
}

// Contents returns the full attachment records embedded in message,
// including extracted content. Display rendering only needs Decode; this is
// for consumers that feed attachment text onward (model input, downloads).
func Contents(message string) []Attachment {
	var atts []Attachment

	rest := message
	for {
		start := strings.Index(rest, attachmentOpen)
		if start < 0 {
			break
		}
		inner := rest[start+len(attachmentOpen):]
		end := strings.Index(inner, attachmentClose)
		if end < 0 {
			break
		}
		block := inner[:end]
		if info, ok := parseBlock(block); ok {
			content, _ := tagValue(block, contentOpen, contentClose)
			// The encoder wraps content in single newlines inside the tag.
			content = strings.TrimPrefix(content, "\n")
			content = strings.TrimSuffix(content, "\n")
			atts = append(atts, Attachment{Index: info.Index, Name: info.Name, Content: content})
		}
		rest = inner[end+len(attachmentClose):]
	}

	return atts
}

// parseBlock extracts index and name from the inside of one envelope. A
// block without both, or with a non-integer index, is malformed.
func parseBlock(block string) (AttachmentInfo, bool) {
	rawIndex, ok := tagValue(block, indexOpen, indexClose)
	if !ok {
		return AttachmentInfo{}, false
	}
	name, ok := tagValue(block, nameOpen, nameClose)
	if !ok {
		return AttachmentInfo{}, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil {
		return AttachmentInfo{}, false
	}
	return AttachmentInfo{Index: index, Name: name}, true
}

// tagValue returns the text between the first occurrence of open and the
// next occurrence of close.
func tagValue(s, open, close string) (string, bool) {
	start := strings.Index(s, open)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
