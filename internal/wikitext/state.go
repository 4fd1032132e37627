package wikitext

import (
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// State is the working state of one Serialize call: the output buffer,
// the current list prefix, the open-mark stack and the whitespace held
// back from the previous text run. A State is never shared between calls.
type State struct {
	dialect *Dialect
	out     strings.Builder
	prefix  string

	open   []doctree.Mark // outermost first
	spaces string
}

func newState(d *Dialect) *State {
	return &State{dialect: d}
}

// Write appends s to the output.
func (st *State) Write(s string) { st.out.WriteString(s) }

// Prefix returns the list prefix for the block being rendered ("" outside lists).
func (st *State) Prefix() string { return st.prefix }

// String returns everything written so far.
func (st *State) String() string { return st.out.String() }

// Render dispatches n to the dialect's renderer for its kind.
func (st *State) Render(n *doctree.Node) error {
	fn, ok := st.dialect.Nodes[n.Kind]
	if !ok {
		return &RenderError{Kind: string(n.Kind), Err: ErrUnknownNode}
	}
	return fn(st, n)
}

// RenderContent renders each child of n in order.
func (st *State) RenderContent(n *doctree.Node) error {
	for _, c := range n.Content {
		if err := st.Render(c); err != nil {
			return err
		}
	}
	return nil
}

// WithPrefix runs fn with the list prefix replaced, restoring the old
// prefix afterwards even when fn fails.
func (st *State) WithPrefix(prefix string, fn func() error) error {
	saved := st.prefix
	st.prefix = prefix
	defer func() { st.prefix = saved }()
	return fn()
}

// RenderList renders each item of a list with the prefix extended by
// marker. Items render their children directly.
func (st *State) RenderList(n *doctree.Node, marker string) error {
	for _, item := range n.Content {
		next := st.dialect.nextPrefix(st.prefix, marker)
		if err := st.WithPrefix(next, func() error { return st.RenderContent(item) }); err != nil {
			return err
		}
	}
	return nil
}
