package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF renders a PDF as one heading-per-page text block. The library
// panics on some malformed inputs, so every call into it runs under a
// recover; any failure becomes the bracketed error placeholder.
func (e *Engine) extractPDF(f File) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("[Error parsing PDF: %v]", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return fmt.Sprintf("[Error parsing PDF: %v]", err)
	}

	total := reader.NumPage()
	if e.cfg.MaxPDFPages > 0 && total > e.cfg.MaxPDFPages {
		total = e.cfg.MaxPDFPages
	}

	var pages []string
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		items := make([]string, 0, len(content.Text))
		for _, item := range content.Text {
			items = append(items, item.S)
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", i, strings.Join(items, " ")))
	}

	return strings.Join(pages, "\n\n")
}
