package parser

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if len(doc.Body.Content) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(doc.Body.Content))
	}

	want := "First paragraph line one.[br]\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if got := render(t, doc); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Body.Content) != 0 {
		t.Errorf("expected 0 paragraphs for empty input, got %d", len(doc.Body.Content))
	}
}

func TestTextParser_SingleLine(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("Hello world"), "single.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Body.Content) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(doc.Body.Content))
	}
	if got := doc.Body.Content[0].TextContent(); got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Body.Content) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(doc.Body.Content))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Body.Content) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(doc.Body.Content))
	}
}

func TestTextParser_NormalizesToNFC(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("Cafe\u0301"), "nfc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Body.Content[0].TextContent(); got != "Caf\u00e9" {
		t.Errorf("expected composed text, got %q", got)
	}
}
