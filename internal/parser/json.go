package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// JSONParser reads an editor document already in the {type, content,
// marks, attrs} JSON shape. An optional envelope {"title", "schema",
// "doc"} selects the title and schema.
type JSONParser struct{}

type jsonEnvelope struct {
	Title  string          `json:"title"`
	Schema string          `json:"schema"`
	Doc    json.RawMessage `json:"doc"`
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	title := titleFromFilename(filename)
	s := schema

	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Doc) > 0 {
		if env.Title != "" {
			title = env.Title
		}
		if env.Schema != "" {
			named, ok := doctree.LookupSchema(env.Schema)
			if !ok {
				return nil, fmt.Errorf("%w: unknown schema %q", doctree.ErrInvalidDocument, env.Schema)
			}
			s = named
		}
		data = env.Doc
	}

	body, err := s.NodeFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse json document: %w", err)
	}
	if body.Kind != doctree.KindDoc {
		return nil, fmt.Errorf("%w: root node is %q, want doc", doctree.ErrInvalidDocument, body.Kind)
	}
	return &doctree.Document{Title: title, Body: body}, nil
}
