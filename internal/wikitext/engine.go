package wikitext

import (
	"maps"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// Inline renders the children of n as one inline sequence. Marks shared by
// adjacent runs stay open across them; all marks are closed at the end.
func (st *State) Inline(n *doctree.Node) error {
	remaining := measureRuns(n.Content)
	for i, run := range n.Content {
		if err := st.renderRun(run, remaining[i]); err != nil {
			return err
		}
	}
	return st.endInline()
}

// renderRun emits one run. remaining maps mark keys to the length still
// covered by that mark from this run onward; nil keeps input order.
func (st *State) renderRun(run *doctree.Node, remaining map[string]int) error {
	var toClose []doctree.Mark
	for _, m := range st.open {
		if !doctree.HasMark(run.Marks, m) {
			toClose = append(toClose, m)
		}
	}
	if len(toClose) > 0 {
		idx, err := earliestOpen(st.open, toClose)
		if err != nil {
			return err
		}
		// Marks above idx that survive are reopened below.
		if err := st.closeMarks(st.open[idx:]); err != nil {
			return err
		}
		st.open = st.open[:idx]
	}

	var toOpen []doctree.Mark
	for _, m := range run.Marks {
		if !doctree.HasMark(st.open, m) {
			toOpen = append(toOpen, m)
		}
	}
	if remaining != nil {
		sort.SliceStable(toOpen, func(i, j int) bool {
			return remaining[toOpen[i].Key()] > remaining[toOpen[j].Key()]
		})
	}
	st.open = append(st.open, toOpen...)

	if run.IsText() {
		lead, core, trail := splitSpace(run.Text)
		st.Write(st.spaces)
		st.Write(lead)
		if err := st.openMarks(toOpen); err != nil {
			return err
		}
		st.Write(core)
		st.spaces = trail
		return nil
	}

	st.Write(st.spaces)
	st.spaces = ""
	if err := st.openMarks(toOpen); err != nil {
		return err
	}
	return st.Render(run)
}

// endInline closes every open mark innermost first and drops any held-back
// whitespace.
func (st *State) endInline() error {
	err := st.closeMarks(st.open)
	st.open = st.open[:0]
	st.spaces = ""
	return err
}

func (st *State) openMarks(marks []doctree.Mark) error {
	for _, m := range marks {
		syn, ok := st.dialect.Marks[m.Kind]
		if !ok {
			return &RenderError{Kind: string(m.Kind), Err: ErrUnknownMark}
		}
		st.Write(syn.Open(m))
	}
	return nil
}

// closeMarks emits closing tokens for marks in reverse order.
func (st *State) closeMarks(marks []doctree.Mark) error {
	for i := len(marks) - 1; i >= 0; i-- {
		m := marks[i]
		syn, ok := st.dialect.Marks[m.Kind]
		if !ok {
			return &RenderError{Kind: string(m.Kind), Err: ErrUnknownMark}
		}
		st.Write(syn.Close(m))
	}
	return nil
}

// earliestOpen returns the lowest stack index holding any of needles.
func earliestOpen(stack, needles []doctree.Mark) (int, error) {
	earliest := len(stack)
	for _, needle := range needles {
		found := false
		for i, m := range stack {
			if m.Eq(needle) {
				found = true
				if i < earliest {
					earliest = i
				}
				break
			}
		}
		if !found {
			return 0, &RenderError{Kind: string(needle.Kind), Err: ErrMarkStack}
		}
	}
	return earliest, nil
}

// measureRuns walks runs backwards and records, for each run, how far each
// of its marks extends from that run to the end of its contiguous span.
func measureRuns(runs []*doctree.Node) []map[string]int {
	out := make([]map[string]int, len(runs))
	current := make(map[string]int)
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		onRun := make(map[string]bool, len(run.Marks))
		for _, m := range run.Marks {
			k := m.Key()
			onRun[k] = true
			if _, ok := current[k]; !ok {
				current[k] = 0
			}
		}
		n := runLength(run)
		for k := range current {
			if !onRun[k] {
				delete(current, k)
				continue
			}
			current[k] += n
		}
		out[i] = maps.Clone(current)
	}
	return out
}

// runLength is the rune count of a text run; atomic runs count as one.
func runLength(run *doctree.Node) int {
	if run.IsText() {
		return utf8.RuneCountInString(run.Text)
	}
	return 1
}

// splitSpace splits s into leading whitespace, trimmed core and trailing
// whitespace. An all-whitespace string is entirely leading.
func splitSpace(s string) (lead, core, trail string) {
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(rest)]
	core = strings.TrimRightFunc(rest, unicode.IsSpace)
	trail = rest[len(core):]
	return lead, core, trail
}
