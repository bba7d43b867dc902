package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractWord handles doc and docx. Only the OOXML container has structured
// extraction; anything that fails it (legacy binary .doc included) goes
// through the binary probe.
func (e *Engine) extractWord(f File) string {
	text, err := docxText(f.Data)
	if err != nil {
		return e.probe(f, fmt.Sprintf("[Word document: %s]", f.Name))
	}
	if text == "" {
		return fmt.Sprintf("[Empty Word document: %s]", f.Name)
	}
	return text
}

// docxText pulls the document body text out of a .docx archive: character
// data inside w:t runs, with tabs, breaks and paragraph boundaries mapped
// to whitespace.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	var doc *zip.File
	for _, file := range zr.File {
		if file.Name == "word/document.xml" {
			doc = file
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("no word/document.xml in archive")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document part: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
