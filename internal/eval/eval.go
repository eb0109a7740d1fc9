// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval implements the monalisp evaluator: scopes, signatures, the
// four callable kinds and the special forms and builtins of the global
// scope.
package eval

import (
	"github.com/tliron/commonlog"

	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/store"
)

// DefaultMaxDepth bounds nested applications.
const DefaultMaxDepth = 10000

// Evaluator evaluates tagged forms against a global scope. An Evaluator is
// not safe for concurrent use.
type Evaluator struct {
	symbols      *form.Symbols
	global       *Scope
	store        store.Store
	strict       bool
	maxDepth     int
	depth        int
	historyLimit int
	log          commonlog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSymbols sets the interning table. Forms evaluated by the Evaluator
// should come from a reader sharing the same table.
func WithSymbols(s *form.Symbols) Option {
	return func(e *Evaluator) { e.symbols = s }
}

// WithStore sets the store used by persist, load and history.
func WithStore(s store.Store) Option {
	return func(e *Evaluator) { e.store = s }
}

// WithStrictIdentifiers makes evaluating an unbound identifier a failure
// instead of nil.
func WithStrictIdentifiers(strict bool) Option {
	return func(e *Evaluator) { e.strict = strict }
}

// WithMaxDepth bounds nested applications. Zero or less disables the bound.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) { e.maxDepth = n }
}

// WithHistoryLimit caps the versions returned by history (0 = all).
func WithHistoryLimit(n int) Option {
	return func(e *Evaluator) { e.historyLimit = n }
}

// New creates an Evaluator whose global scope holds the special forms and
// the builtin library.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		global:   NewScope(),
		maxDepth: DefaultMaxDepth,
		log:      commonlog.GetLogger("monalisp.eval"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.symbols == nil {
		e.symbols = form.NewSymbols()
	}
	installSpecialForms(e)
	installLibrary(e)
	return e
}

// Symbols returns the interning table.
func (e *Evaluator) Symbols() *form.Symbols {
	return e.symbols
}

// Global returns the global frame.
func (e *Evaluator) Global() *Scope {
	return e.global
}

// Scope returns a stack holding only the global frame.
func (e *Evaluator) Scope() Stack {
	return NewStack(e.global)
}

// Store returns the configured store, or nil.
func (e *Evaluator) Store() store.Store {
	return e.store
}

// Define binds name in the global frame. Callables without a name take it.
func (e *Evaluator) Define(name string, v form.Value) {
	e.symbols.Identifier(name)
	e.global.DefineName(name, form.Lift(named(v, name)))
}

// EvaluateAll evaluates forms in order against the global scope and returns
// the value of the last one, or nil when there are none.
func (e *Evaluator) EvaluateAll(forms []form.Tagged) (form.Tagged, *Failure) {
	result := form.NilForm
	scope := e.Scope()
	for _, t := range forms {
		v, f := e.Evaluate(scope, t)
		if f != nil {
			e.log.Debugf("evaluation failed: %s", f.Error())
			return form.Tagged{}, f
		}
		result = v
	}
	return result, nil
}

// Evaluate evaluates one form. Atoms evaluate to themselves, identifiers to
// their binding, lists apply their head and dictionaries evaluate every key
// and value.
func (e *Evaluator) Evaluate(scope Stack, t form.Tagged) (form.Tagged, *Failure) {
	switch v := t.Value.(type) {
	case *form.Identifier:
		if bound, ok := scope.Lookup(v.Name); ok {
			return bound, nil
		}
		if e.strict {
			return form.Tagged{}, Failf(t.Pos, "Undefined identifier %s.", v.Name)
		}
		return form.Tag(Undefined.Value, t.Pos), nil
	case form.List:
		return e.apply(scope, t, v)
	case form.Dict:
		pairs := make(form.Dict, len(v))
		for i, p := range v {
			key, f := e.Evaluate(scope, p.Key)
			if f != nil {
				return form.Tagged{}, f
			}
			value, f := e.Evaluate(scope, p.Value)
			if f != nil {
				return form.Tagged{}, f
			}
			pairs[i] = form.Pair{Key: key, Value: value}
		}
		return form.Tag(pairs, t.Pos), nil
	case nil:
		return form.Tag(form.Nil{}, t.Pos), nil
	default:
		return t, nil
	}
}

// EvaluateSequence evaluates forms in order, stopping at the first failure.
func (e *Evaluator) EvaluateSequence(scope Stack, forms []form.Tagged) ([]form.Tagged, *Failure) {
	results := make([]form.Tagged, 0, len(forms))
	for _, t := range forms {
		v, f := e.Evaluate(scope, t)
		if f != nil {
			return nil, f
		}
		results = append(results, v)
	}
	return results, nil
}

// evaluateBody evaluates forms in order and returns the last value.
func (e *Evaluator) evaluateBody(scope Stack, forms []form.Tagged) (form.Tagged, *Failure) {
	result := form.NilForm
	for _, t := range forms {
		v, f := e.Evaluate(scope, t)
		if f != nil {
			return form.Tagged{}, f
		}
		result = v
	}
	return result, nil
}

func (e *Evaluator) apply(scope Stack, t form.Tagged, list form.List) (form.Tagged, *Failure) {
	if len(list) == 0 {
		return form.Tagged{}, Failf(t.Pos, "Cannot apply an empty list.")
	}
	head, f := e.Evaluate(scope, list[0])
	if f != nil {
		return form.Tagged{}, f
	}
	c, ok := head.Value.(Callable)
	if !ok {
		return form.Tagged{}, Failf(list[0].Pos, "%s is not callable, got %s.", list[0], head.Flag())
	}

	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return form.Tagged{}, Failf(t.Pos, "Maximum recursion depth of %d exceeded.", e.maxDepth)
	}
	e.depth++
	defer func() { e.depth-- }()

	result, f := c.call(e, scope, t.Pos, list[1:])
	if f != nil {
		if f.Pos.IsZero() {
			f.Pos = t.Pos
		}
		f.Trace = append(f.Trace, Frame{Name: c.Name(), Pos: t.Pos})
		return form.Tagged{}, f
	}
	return result, nil
}

// named gives an anonymous procedure or macro a name.
func named(v form.Value, name string) form.Value {
	switch c := v.(type) {
	case *Procedure:
		if c.name == "" {
			return c.named(name)
		}
	case *Macro:
		if c.name == "" {
			return c.named(name)
		}
	}
	return v
}
