// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package read turns monalisp source text into tagged forms.
//
// The grammar is assembled from the combinators in package parse:
//
//	expr    := macro | atom | list | dict
//	atom    := number | string | identifier | keyword
//	list    := "(" ws? (expr (ws expr)*)? ws? ")"
//	dict    := "{" ws? ((expr ws expr) ((ws|",") ws? expr ws expr)*)? ws? "}"
//	macro   := "'" expr | "•" list
//
// Every successfully parsed expression is wrapped in a form.Tagged carrying
// the position where it started.
package read

import (
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
)

// DefaultMaxDepth bounds list, dictionary and reader macro nesting.
const DefaultMaxDepth = 512

// Reader parses source text into tagged forms, interning symbols in its
// table. A Reader holds no per-read state and may be shared.
type Reader struct {
	symbols  *form.Symbols
	maxDepth int
	radix    bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxDepth bounds how deeply lists, dictionaries and reader macros may
// nest. Zero or less disables the bound.
func WithMaxDepth(n int) Option {
	return func(r *Reader) {
		r.maxDepth = n
	}
}

// WithRadixLiterals enables 0x, 0o and 0b number literals.
func WithRadixLiterals(enabled bool) Option {
	return func(r *Reader) {
		r.radix = enabled
	}
}

// New creates a Reader that interns into symbols.
func New(symbols *form.Symbols, opts ...Option) *Reader {
	r := &Reader{
		symbols:  symbols,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Symbols returns the interning table the reader writes to.
func (r *Reader) Symbols() *form.Symbols {
	return r.symbols
}

// Read parses every top-level form in source. A failure is returned as a
// *parse.Failure.
func (r *Reader) Read(source string) ([]form.Tagged, error) {
	forms, f := r.Parse(source)
	if f != nil {
		return nil, f
	}
	return forms, nil
}

// Parse is Read with the failure left unwrapped.
func (r *Reader) Parse(source string) ([]form.Tagged, *parse.Failure) {
	g := r.newGrammar()
	program := parse.Right(parse.AnySpace, parse.Completion(parse.Left(g.expr, parse.AnySpace)))
	forms, f := program.RunString(source)
	if g.fatal != nil {
		return nil, g.fatal
	}
	return forms, f
}

// ReadOne parses exactly one form from source, ignoring surrounding space.
func (r *Reader) ReadOne(source string) (form.Tagged, *parse.Failure) {
	g := r.newGrammar()
	one := parse.Surround(g.expr, parse.AnySpace)
	s := parse.NewStream(source)
	t, f := one(s)
	if g.fatal != nil {
		return form.Tagged{}, g.fatal
	}
	if f != nil {
		return form.Tagged{}, f
	}
	if !s.IsDone() {
		return form.Tagged{}, parse.Fail(s, "expression", "Unexpected %q after expression.", s.Peek())
	}
	return t, nil
}
