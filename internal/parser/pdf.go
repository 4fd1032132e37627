package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docwiki-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return newDocument(titleFromFilename(filename), pdfBlocks(text)), nil
}

// pdfBlocks turns extracted text into blocks. Pages are separated by form
// feeds; multi-page documents get a heading per page.
func pdfBlocks(text string) []*doctree.Node {
	pages := splitPages(text)
	var blocks []*doctree.Node
	for i, page := range pages {
		paras := pdfParagraphs(page)
		if len(paras) == 0 {
			continue
		}
		if len(pages) > 1 {
			blocks = append(blocks, heading(2, []*doctree.Node{schema.Text(fmt.Sprintf("Page %d", i+1))}))
		}
		blocks = append(blocks, paras...)
	}
	return blocks
}

// pdfParagraphs splits page text on blank lines and joins wrapped lines.
func pdfParagraphs(page string) []*doctree.Node {
	var out []*doctree.Node
	for _, chunk := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n\n") {
		joined := strings.Join(strings.Fields(chunk), " ")
		if joined == "" {
			continue
		}
		var b inlineBuilder
		b.text(joined, nil)
		out = append(out, paragraph(b.take()))
	}
	return out
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
