package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// File is one attachment handed to the engine: a display name (also the
// source of the extension) and the full content bytes. The engine only
// reads it.
type File struct {
	Name string
	Data []byte
}

// Category classifies a file by its extension. The set is closed: Extract
// switches over every value, so adding a category is a visible change here
// and there, not a fallthrough.
type Category int

const (
	CategoryText Category = iota
	CategoryPDF
	CategoryWord
	CategoryExcel
	CategoryPowerPoint
	CategoryImage
	CategoryEmail
	CategoryMailbox
	CategoryUnknown
)

// String returns a short lowercase label for logs and stats.
func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryPDF:
		return "pdf"
	case CategoryWord:
		return "word"
	case CategoryExcel:
		return "excel"
	case CategoryPowerPoint:
		return "powerpoint"
	case CategoryImage:
		return "image"
	case CategoryEmail:
		return "email"
	case CategoryMailbox:
		return "mailbox"
	default:
		return "unknown"
	}
}

// textExtensions is the allow-list of extensions decoded verbatim: code,
// markup, config and log formats that are text by construction.
var textExtensions = map[string]struct{}{
	"txt": {}, "text": {}, "md": {}, "markdown": {}, "log": {},
	"csv": {}, "tsv": {},
	"json": {}, "jsonl": {}, "xml": {}, "html": {}, "htm": {},
	"css": {}, "js": {}, "jsx": {}, "ts": {}, "tsx": {}, "mjs": {}, "cjs": {},
	"yaml": {}, "yml": {}, "toml": {}, "ini": {}, "cfg": {}, "conf": {},
	"env": {}, "properties": {},
	"go": {}, "py": {}, "rb": {}, "rs": {}, "java": {}, "kt": {},
	"c": {}, "h": {}, "cc": {}, "cpp": {}, "hpp": {}, "cs": {},
	"php": {}, "swift": {}, "scala": {}, "lua": {}, "pl": {}, "r": {},
	"sql": {}, "sh": {}, "bash": {}, "zsh": {}, "fish": {}, "bat": {}, "ps1": {},
	"dockerfile": {}, "makefile": {}, "gradle": {},
	"proto": {}, "graphql": {},
	"tex": {}, "rst": {}, "adoc": {}, "org": {},
	"diff": {}, "patch": {},
}

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "webp": {}, "svg": {},
}

// CategoryForName maps a filename to its category by lower-cased extension.
func CategoryForName(name string) Category {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "pdf":
		return CategoryPDF
	case "doc", "docx":
		return CategoryWord
	case "xls", "xlsx":
		return CategoryExcel
	case "ppt", "pptx":
		return CategoryPowerPoint
	case "eml":
		return CategoryEmail
	case "mbox":
		return CategoryMailbox
	}
	if _, ok := textExtensions[ext]; ok {
		return CategoryText
	}
	if _, ok := imageExtensions[ext]; ok {
		return CategoryImage
	}
	return CategoryUnknown
}

// Config carries the engine's tunables. It is passed at construction; the
// engine holds no package-level state.
type Config struct {
	// MaxPDFPages caps how many pages the PDF extractor walks. Zero means
	// no cap.
	MaxPDFPages int
}

// Engine converts attachment bytes into text for the message body.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Extract returns the best textual representation of f. It is total: every
// input yields a string, never a panic or an error. Failures degrade to
// bracketed placeholders so the attachment is never silently lost.
func (e *Engine) Extract(f File) string {
	switch CategoryForName(f.Name) {
	case CategoryText:
		// Verbatim, byte for byte.
		return string(f.Data)
	case CategoryPDF:
		return e.extractPDF(f)
	case CategoryWord:
		return e.extractWord(f)
	case CategoryExcel:
		return e.extractExcel(f)
	case CategoryPowerPoint:
		// No structured extraction for presentations.
		return e.probe(f, fmt.Sprintf("[PowerPoint presentation: %s]", f.Name))
	case CategoryImage:
		return fmt.Sprintf("[Image file: %s]", f.Name)
	case CategoryEmail:
		return e.extractEmail(f)
	case CategoryMailbox:
		return e.extractMailbox(f)
	default:
		text, err := decodeText(f.Data)
		if err != nil {
			return fmt.Sprintf("[Binary or unsupported file: %s]", f.Name)
		}
		return text
	}
}

// probe is the shared fallback for structured extractors: if the raw bytes
// read as text, use them; otherwise mark the content as binary under the
// category placeholder.
func (e *Engine) probe(f File, placeholder string) string {
	text, err := decodeText(f.Data)
	if err != nil || !likelyText(text) {
		return placeholder + "\n[Binary content detected]"
	}
	return text
}

// decodeText converts bytes to a string, failing on invalid UTF-8.
func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(data), nil
}

// likelyText reports whether s reads as text: strictly less than 10% of its
// characters fall in the control ranges 0x00-0x09, 0x0B-0x1F and 0x7F-0x9F.
// The empty string counts as text (a 0/0 ratio is not binary).
func likelyText(s string) bool {
	if s == "" {
		return true
	}
	total := 0
	control := 0
	for _, r := range s {
		total++
		if isControlRune(r) {
			control++
		}
	}
	return float64(control)/float64(total) < 0.1
}

func isControlRune(r rune) bool {
	switch {
	case r <= 0x09:
		return true
	case r >= 0x0B && r <= 0x1F:
		return true
	case r >= 0x7F && r <= 0x9F:
		return true
	}
	return false
}
