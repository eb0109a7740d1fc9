// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package monalisp provides the monalisp runtime: a reader and an evaluator
// sharing one interning table and one global scope.
package monalisp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"nickandperla.net/monalisp/internal/eval"
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
	"nickandperla.net/monalisp/internal/read"
	"nickandperla.net/monalisp/internal/stdlib"
	"nickandperla.net/monalisp/internal/store"
)

// Form is a value paired with its source position.
type Form = form.Tagged

// Value is any monalisp value.
type Value = form.Value

// Scope is a chain of lexical frames.
type Scope = eval.Stack

// Store persists definitions for persist, load and history.
type Store = store.Store

// ParseFailure is returned by Read and Execute for malformed source.
type ParseFailure = parse.Failure

// EvalFailure is returned by Evaluate and Execute when evaluation fails.
type EvalFailure = eval.Failure

// Runtime is the monalisp interpreter runtime.
type Runtime struct {
	symbols   *form.Symbols
	reader    *read.Reader
	evaluator *eval.Evaluator
	store     store.Store
	optErr    error
	log       commonlog.Logger

	maxDepth     int
	maxReadDepth int
	historyLimit int
	strict       bool
	radix        bool
	prelude      string // Extra prelude source, evaluated after the embedded one
	noStdlib     bool   // If true, skip loading both preludes
}

// New creates a new runtime with the given options. The prelude is
// evaluated before New returns.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		symbols:      form.NewSymbols(),
		maxDepth:     eval.DefaultMaxDepth,
		maxReadDepth: read.DefaultMaxDepth,
		log:          commonlog.GetLogger("monalisp.runtime"),
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.optErr != nil {
		r.Close()
		return nil, r.optErr
	}

	r.reader = read.New(r.symbols,
		read.WithMaxDepth(r.maxReadDepth),
		read.WithRadixLiterals(r.radix),
	)

	evalOpts := []eval.Option{
		eval.WithSymbols(r.symbols),
		eval.WithMaxDepth(r.maxDepth),
		eval.WithStrictIdentifiers(r.strict),
		eval.WithHistoryLimit(r.historyLimit),
	}
	if r.store != nil {
		evalOpts = append(evalOpts, eval.WithStore(r.store))
	}
	r.evaluator = eval.New(evalOpts...)

	if !r.noStdlib {
		for _, prelude := range []string{stdlib.Prelude, r.prelude} {
			if prelude == "" {
				continue
			}
			if _, err := r.Execute(prelude); err != nil {
				r.Close()
				return nil, fmt.Errorf("monalisp: prelude: %w", err)
			}
		}
		r.log.Infof("loaded prelude")
	}

	return r, nil
}

// Read parses every top-level form of source.
func (r *Runtime) Read(source string) ([]Form, error) {
	return r.reader.Read(source)
}

// Evaluate evaluates one form in scope. An empty Scope means the global
// scope.
func (r *Runtime) Evaluate(scope Scope, f Form) (Form, error) {
	if scope.Len() == 0 {
		scope = r.Scope()
	}
	v, failure := r.evaluator.Evaluate(scope, f)
	if failure != nil {
		return Form{}, failure
	}
	return v, nil
}

// Execute reads source and evaluates its forms in the global scope,
// returning the value of the last one. The first parse or evaluation
// failure aborts the whole call.
func (r *Runtime) Execute(source string) (Form, error) {
	forms, err := r.Read(source)
	if err != nil {
		return Form{}, err
	}
	v, failure := r.evaluator.EvaluateAll(forms)
	if failure != nil {
		return Form{}, failure
	}
	return v, nil
}

// ExecuteReader executes everything read from reader.
func (r *Runtime) ExecuteReader(reader io.Reader) (Form, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return Form{}, err
	}
	return r.Execute(string(data))
}

// ExecuteFile executes a source file.
func (r *Runtime) ExecuteFile(path string) (Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return Form{}, err
	}
	defer f.Close()
	return r.ExecuteReader(f)
}

// Define binds name in the global scope.
func (r *Runtime) Define(name string, v Value) {
	r.evaluator.Define(name, v)
}

// Scope returns the global scope.
func (r *Runtime) Scope() Scope {
	return r.evaluator.Scope()
}

// Lookup returns the global binding of name.
func (r *Runtime) Lookup(name string) (Form, bool) {
	return r.evaluator.Global().Lookup(name)
}

// Globals returns the sorted names bound in the global scope.
func (r *Runtime) Globals() []string {
	return r.evaluator.Global().Names()
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// Describe renders err for a user, with the offending line and caret when
// err is a failure from this package.
func Describe(err error, source string) string {
	var f *EvalFailure
	if errors.As(err, &f) {
		return f.Describe(source)
	}
	return err.Error()
}
