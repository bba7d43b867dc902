package extract

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	// Register additional charsets that are commonly used in emails
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// extractEmail renders an .eml message as a header block plus its text body.
func (e *Engine) extractEmail(f File) string {
	text, err := emailText(f.Data)
	if err != nil {
		return e.probe(f, fmt.Sprintf("[Email message: %s]", f.Name))
	}
	return text
}

// extractMailbox renders an .mbox archive as one block per readable message.
func (e *Engine) extractMailbox(f File) string {
	placeholder := fmt.Sprintf("[Mailbox file: %s]", f.Name)

	mr := mbox.NewReader(bytes.NewReader(f.Data))
	var blocks []string
	for {
		msg, err := mr.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Corrupt separator or truncated archive: keep what was read.
			break
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			continue
		}
		text, err := emailText(raw)
		if err != nil {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- Message %d ---\n%s", len(blocks)+1, text))
	}

	if len(blocks) == 0 {
		return e.probe(f, placeholder)
	}
	return strings.Join(blocks, "\n\n")
}

// emailText parses one RFC 822 message and flattens it to readable text:
// the interesting headers, a blank line, then the body (text/plain parts
// preferred, tag-stripped HTML when that is all there is).
func emailText(raw []byte) (string, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}

	header := mr.Header
	var b strings.Builder
	if fromAddrs, err := header.AddressList("From"); err == nil && len(fromAddrs) > 0 {
		b.WriteString("From: " + formatAddress(fromAddrs[0].Name, fromAddrs[0].Address) + "\n")
	}
	if toAddrs, err := header.AddressList("To"); err == nil && len(toAddrs) > 0 {
		formatted := make([]string, 0, len(toAddrs))
		for _, addr := range toAddrs {
			formatted = append(formatted, formatAddress(addr.Name, addr.Address))
		}
		b.WriteString("To: " + strings.Join(formatted, ", ") + "\n")
	}
	if subject := decodeMIMEWord(header.Get("Subject")); subject != "" {
		b.WriteString("Subject: " + subject + "\n")
	}
	if date, err := header.Date(); err == nil && !date.IsZero() {
		b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\n")
	}

	var plain, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			// Attachments inside the email are not unpacked further.
			continue
		}
		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read body: %w", err)
		}
		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			if plain == "" {
				plain = string(body)
			}
		case strings.HasPrefix(contentType, "text/html"):
			if html == "" {
				html = string(body)
			}
		}
	}

	body := strings.TrimSpace(plain)
	if body == "" && html != "" {
		body = stripHTMLTags(html)
	}
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return strings.TrimSpace(b.String()), nil
}

func formatAddress(name, address string) string {
	if name != "" {
		return fmt.Sprintf("%s <%s>", name, address)
	}
	return address
}

// decodeMIMEWord decodes MIME-encoded words (RFC 2047)
func decodeMIMEWord(s string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes markup from an HTML body so it reads as plain text.
func stripHTMLTags(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	return strings.TrimSpace(text)
}
