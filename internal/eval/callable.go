// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
)

// Callable is implemented by builtins, procedures, special forms and
// macros. Each kind decides how its argument forms are evaluated.
type Callable interface {
	form.Callable
	// Signature returns the parameters still to be supplied.
	Signature() *Signature
	// Kind names the callable variant for printing and hover text.
	Kind() string
	// Partial reports whether the callable was produced by currying.
	Partial() bool

	call(e *Evaluator, scope Stack, pos parse.State, forms []form.Tagged) (form.Tagged, *Failure)
}

// BuiltinFunc is the native body of a Builtin. It receives every argument,
// curried ones first, already evaluated and type checked.
type BuiltinFunc func(args []form.Tagged) (form.Value, error)

// Builtin is a native procedure with evaluated arguments.
type Builtin struct {
	name    string
	sig     *Signature
	fn      BuiltinFunc
	prefix  []form.Tagged
	partial bool
}

// NewBuiltin creates a builtin procedure.
func NewBuiltin(name string, sig *Signature, fn BuiltinFunc) *Builtin {
	return &Builtin{name: name, sig: sig, fn: fn}
}

func (b *Builtin) Flag() form.Flag       { return form.FlagCallable }
func (b *Builtin) Name() string          { return b.name }
func (b *Builtin) Kind() string          { return "builtin" }
func (b *Builtin) Signature() *Signature { return b.sig }
func (b *Builtin) Partial() bool         { return b.partial }
func (b *Builtin) String() string        { return printCallable(b) }

func (b *Builtin) call(e *Evaluator, scope Stack, pos parse.State, forms []form.Tagged) (form.Tagged, *Failure) {
	args, f := e.EvaluateSequence(scope, forms)
	if f != nil {
		return form.Tagged{}, f
	}
	if f := verify(b.sig, args, pos); f != nil {
		return form.Tagged{}, f
	}
	all := concatForms(b.prefix, args)
	if len(args) < b.sig.MinArity() {
		sig, err := b.sig.Drop(len(args))
		if err != nil {
			return form.Tagged{}, wrapError(err, pos)
		}
		e.log.Debugf("curried builtin %s with %d argument(s)", b.name, len(all))
		return form.Tag(&Builtin{name: b.name, sig: sig, fn: b.fn, prefix: all, partial: true}, pos), nil
	}
	v, err := b.fn(all)
	if err != nil {
		return form.Tagged{}, wrapError(err, pos)
	}
	return form.Tag(v, pos), nil
}

// Procedure is a user function closing over the scope it was created in.
type Procedure struct {
	name    string
	closure Stack
	sig     *Signature
	params  form.Tagged
	body    []form.Tagged
	partial bool
}

// NewProcedure creates a procedure. params is the parameter list as written
// and is kept for printing and persistence.
func NewProcedure(closure Stack, sig *Signature, params form.Tagged, body []form.Tagged) *Procedure {
	return &Procedure{closure: closure, sig: sig, params: params, body: body}
}

func (p *Procedure) Flag() form.Flag       { return form.FlagCallable }
func (p *Procedure) Name() string          { return p.name }
func (p *Procedure) Kind() string          { return "procedure" }
func (p *Procedure) Signature() *Signature { return p.sig }
func (p *Procedure) Partial() bool         { return p.partial }
func (p *Procedure) String() string        { return printCallable(p) }

// Params returns the parameter list form.
func (p *Procedure) Params() form.Tagged { return p.params }

// Body returns the body forms.
func (p *Procedure) Body() []form.Tagged { return p.body }

func (p *Procedure) call(e *Evaluator, scope Stack, pos parse.State, forms []form.Tagged) (form.Tagged, *Failure) {
	args, f := e.EvaluateSequence(scope, forms)
	if f != nil {
		return form.Tagged{}, f
	}
	if f := verify(p.sig, args, pos); f != nil {
		return form.Tagged{}, f
	}
	if len(args) < p.sig.MinArity() {
		sig, err := p.sig.Drop(len(args))
		if err != nil {
			return form.Tagged{}, wrapError(err, pos)
		}
		e.log.Debugf("curried procedure %s with %d argument(s)", p.displayName(), len(args))
		curried := &Procedure{
			name:    p.name,
			closure: p.closure.Push(p.sig.BindPrefix(args)),
			sig:     sig,
			params:  p.params,
			body:    p.body,
			partial: true,
		}
		return form.Tag(curried, pos), nil
	}
	return e.evaluateBody(p.closure.Push(p.sig.Bind(args)), p.body)
}

func (p *Procedure) displayName() string {
	if p.name == "" {
		return "anonymous"
	}
	return p.name
}

func (p *Procedure) named(name string) *Procedure {
	renamed := *p
	renamed.name = name
	return &renamed
}

// SpecialFunc is the native body of a SpecialForm. args are unevaluated.
type SpecialFunc func(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure)

// SpecialForm is a native callable that receives its operands unevaluated.
// Its signature constrains the syntactic type of each operand.
type SpecialForm struct {
	name    string
	sig     *Signature
	fn      SpecialFunc
	prefix  []form.Tagged
	partial bool
}

// NewSpecialForm creates a special form.
func NewSpecialForm(name string, sig *Signature, fn SpecialFunc) *SpecialForm {
	return &SpecialForm{name: name, sig: sig, fn: fn}
}

func (s *SpecialForm) Flag() form.Flag       { return form.FlagCallable }
func (s *SpecialForm) Name() string          { return s.name }
func (s *SpecialForm) Kind() string          { return "special form" }
func (s *SpecialForm) Signature() *Signature { return s.sig }
func (s *SpecialForm) Partial() bool         { return s.partial }
func (s *SpecialForm) String() string        { return printCallable(s) }

func (s *SpecialForm) call(e *Evaluator, scope Stack, pos parse.State, forms []form.Tagged) (form.Tagged, *Failure) {
	if f := verify(s.sig, forms, pos); f != nil {
		return form.Tagged{}, f
	}
	all := concatForms(s.prefix, forms)
	if len(forms) < s.sig.MinArity() {
		sig, err := s.sig.Drop(len(forms))
		if err != nil {
			return form.Tagged{}, wrapError(err, pos)
		}
		return form.Tag(&SpecialForm{name: s.name, sig: sig, fn: s.fn, prefix: all, partial: true}, pos), nil
	}
	return s.fn(e, scope, pos, all)
}

// Macro receives its operands as plain, position-free forms and returns a
// replacement form that is evaluated again at the call site. Expansion is
// not hygienic.
type Macro struct {
	name    string
	closure Stack
	sig     *Signature
	params  form.Tagged
	body    []form.Tagged
	partial bool
}

// NewMacro creates a macro closing over closure.
func NewMacro(closure Stack, sig *Signature, params form.Tagged, body []form.Tagged) *Macro {
	return &Macro{closure: closure, sig: sig, params: params, body: body}
}

func (m *Macro) Flag() form.Flag       { return form.FlagCallable }
func (m *Macro) Name() string          { return m.name }
func (m *Macro) Kind() string          { return "macro" }
func (m *Macro) Signature() *Signature { return m.sig }
func (m *Macro) Partial() bool         { return m.partial }
func (m *Macro) String() string        { return printCallable(m) }

// Params returns the parameter list form.
func (m *Macro) Params() form.Tagged { return m.params }

// Body returns the body forms.
func (m *Macro) Body() []form.Tagged { return m.body }

func (m *Macro) call(e *Evaluator, scope Stack, pos parse.State, forms []form.Tagged) (form.Tagged, *Failure) {
	args := make([]form.Tagged, len(forms))
	for i, f := range forms {
		args[i] = form.Strip(f)
	}
	if f := verify(m.sig, args, pos); f != nil {
		return form.Tagged{}, f
	}
	if len(args) < m.sig.MinArity() {
		sig, err := m.sig.Drop(len(args))
		if err != nil {
			return form.Tagged{}, wrapError(err, pos)
		}
		curried := &Macro{
			name:    m.name,
			closure: m.closure.Push(m.sig.BindPrefix(args)),
			sig:     sig,
			params:  m.params,
			body:    m.body,
			partial: true,
		}
		return form.Tag(curried, pos), nil
	}

	expansion, f := e.evaluateBody(m.closure.Push(m.sig.Bind(args)), m.body)
	if f != nil {
		return form.Tagged{}, f
	}
	e.log.Debugf("expanded macro %s to %s", m.name, expansion)
	return e.Evaluate(scope, form.Retag(expansion, pos))
}

func (m *Macro) named(name string) *Macro {
	renamed := *m
	renamed.name = name
	return &renamed
}

func verify(sig *Signature, args []form.Tagged, pos parse.State) *Failure {
	if f := sig.VerifyArity(len(args), pos); f != nil {
		return f
	}
	return sig.VerifyTypes(args)
}

func concatForms(prefix, rest []form.Tagged) []form.Tagged {
	if len(prefix) == 0 {
		return rest
	}
	all := make([]form.Tagged, 0, len(prefix)+len(rest))
	all = append(all, prefix...)
	return append(all, rest...)
}

func printCallable(c Callable) string {
	kind := c.Kind()
	if c.Partial() {
		kind = "partial " + kind
	}
	if c.Name() == "" {
		return "#<" + kind + ">"
	}
	return "#<" + kind + " " + c.Name() + ">"
}
