package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel renders a workbook sheet by sheet: a heading per sheet, one
// tab-joined line per non-empty row, blank line between sheets. Legacy
// binary .xls fails to open and goes through the binary probe.
func (e *Engine) extractExcel(f File) string {
	placeholder := fmt.Sprintf("[Excel document: %s]", f.Name)

	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return e.probe(f, placeholder)
	}
	defer wb.Close()

	hasCells := false
	sheets := make([]string, 0, len(wb.GetSheetList()))
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil {
			return e.probe(f, placeholder)
		}
		var b strings.Builder
		b.WriteString(fmt.Sprintf("--- Sheet: %s ---", name))
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			hasCells = true
			b.WriteByte('\n')
			b.WriteString(strings.Join(row, "\t"))
		}
		sheets = append(sheets, b.String())
	}

	if !hasCells {
		return fmt.Sprintf("[Empty Excel file: %s]", f.Name)
	}
	return strings.Join(sheets, "\n\n")
}
