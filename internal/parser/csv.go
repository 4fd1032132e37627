package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// CSVParser handles CSV files. Rows become bullet items with each cell
// labelled by its bold column header, grouped under a heading per batch.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := titleFromFilename(filename)
	if len(records) == 0 {
		return newDocument(title, nil), nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]
	strong := mark(doctree.MarkStrong)

	var blocks []*doctree.Node
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		var items [][]*doctree.Node
		for _, row := range dataRows[i:end] {
			var b inlineBuilder
			for j, cell := range row {
				if j > 0 {
					b.text(", ", nil)
				}
				if j < len(headers) && headers[j] != "" {
					b.text(headers[j]+":", []doctree.Mark{strong})
					b.text(" ", nil)
				}
				b.text(cell, nil)
			}
			if runs := b.take(); len(runs) > 0 {
				items = append(items, []*doctree.Node{paragraph(runs)})
			}
		}
		if len(items) == 0 {
			continue
		}
		blocks = append(blocks,
			heading(3, []*doctree.Node{schema.Text(fmt.Sprintf("Rows %d-%d", i+2, end+1))}),
			listNode(false, 0, items),
		)
	}

	return newDocument(title, blocks), nil
}
