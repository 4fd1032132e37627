package wikitext

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when a dialect has no renderer for a node kind.
	ErrUnknownNode = errors.New("unknown node kind")
	// ErrUnknownMark is returned when a dialect has no tokens for a mark kind.
	ErrUnknownMark = errors.New("unknown mark kind")
	// ErrMarkStack signals that a mark selected for closing was not on the
	// open-mark stack. It indicates a bug in the engine, not bad input.
	ErrMarkStack = errors.New("open mark stack out of sync")
)

// RenderError names the node or mark kind a render failed on.
type RenderError struct {
	Kind string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Kind)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ErrUnknownDialect is returned when a dialect name is not registered.
var ErrUnknownDialect = errors.New("unknown dialect")
