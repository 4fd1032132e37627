package parser

import (
	"strings"
	"testing"
)

func TestCSVParser_Rows(t *testing.T) {
	input := "name,age\nAlice,30\nBob,41\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "people.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "people" {
		t.Errorf("expected title %q, got %q", "people", doc.Title)
	}

	want := "=== Rows 2-3 ===\n" +
		"* '''name:''' Alice, '''age:''' 30\n" +
		"* '''name:''' Bob, '''age:''' 41"
	if got := render(t, doc); got != want {
		t.Errorf("rendered:\n%s\nwant:\n%s", got, want)
	}
}

func TestCSVParser_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("id\n")
	for i := 0; i < 45; i++ {
		b.WriteString("x\n")
	}
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(b.String()), "ids.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Three batches, each a heading plus a list.
	if len(doc.Body.Content) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(doc.Body.Content))
	}
	if got := doc.Body.Content[4].TextContent(); got != "Rows 42-46" {
		t.Errorf("expected last batch heading %q, got %q", "Rows 42-46", got)
	}
	if n := doc.Body.Content[5].ChildCount(); n != 5 {
		t.Errorf("expected 5 rows in last batch, got %d", n)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Body.Content) != 0 {
		t.Errorf("expected no blocks, got %d", len(doc.Body.Content))
	}
}
