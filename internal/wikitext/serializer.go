// Package wikitext renders document trees as wiki markup.
//
// Inline runs are rendered by a mark-interval engine: it keeps a stack of
// open marks, closes only what a run drops, and opens marks that span
// further first so the emitted markup always nests.
package wikitext

import (
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// Serializer renders documents with one dialect. It holds no per-call
// state and is safe for concurrent use.
type Serializer struct {
	dialect *Dialect
}

// New returns a serializer for d. A nil dialect selects Standard.
func New(d *Dialect) *Serializer {
	if d == nil {
		d = Standard()
	}
	return &Serializer{dialect: d}
}

// Dialect returns the serializer's dialect.
func (s *Serializer) Dialect() *Dialect { return s.dialect }

// Serialize renders each child of doc and returns the output with
// surrounding whitespace trimmed.
func (s *Serializer) Serialize(doc *doctree.Node) (string, error) {
	st := newState(s.dialect)
	if err := st.RenderContent(doc); err != nil {
		return "", err
	}
	return strings.TrimSpace(st.String()), nil
}

// Serialize renders doc with the standard dialect.
func Serialize(doc *doctree.Node) (string, error) {
	return New(nil).Serialize(doc)
}
