package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// renderPDFText flattens a PDF into newline-separated plain text, one line
// per row of positioned text. Decoding is delegated entirely to the PDF
// library; this layer only reassembles rows so the heuristic scanner can
// work line by line.
func renderPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// A single unreadable page degrades to a gap, not a failure.
			continue
		}

		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}

	return sb.String(), nil
}
