package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// single line breaks inside a paragraph become hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []*doctree.Node
	var current inlineBuilder
	lines := 0

	flush := func() {
		if runs := current.take(); len(runs) > 0 {
			blocks = append(blocks, paragraph(runs))
		}
		lines = 0
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if lines > 0 {
			current.node(hardBreak())
		}
		current.text(strings.TrimRight(line, " \t"), nil)
		lines++
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return newDocument(titleFromFilename(filename), blocks), nil
}
