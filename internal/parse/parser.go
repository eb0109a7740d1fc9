// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parse

import (
	"fmt"
	"strings"
)

// Failure is the value a parser returns instead of a result. It is never
// raised; combinators pass it along or relabel it.
type Failure struct {
	Message string
	Label   string
	Info    Info
}

// Fail builds a Failure at the stream's current position.
func Fail(s *Stream, label, format string, args ...any) *Failure {
	return &Failure{
		Message: fmt.Sprintf(format, args...),
		Label:   label,
		Info:    s.Info(),
	}
}

// Error renders the failure with the offending line and a caret.
func (f *Failure) Error() string {
	label := f.Label
	if label == "" {
		label = "unknown"
	}
	return fmt.Sprintf("Failed to parse %s.\nline %d, column %d\n  %s\n  %s^ %s",
		label, f.Info.Line, f.Info.Column+1,
		f.Info.LineText, strings.Repeat(" ", f.Info.Column), f.Message)
}

// Parser consumes runes from a Stream and produces a T or a Failure.
type Parser[T any] func(s *Stream) (T, *Failure)

// Run applies p to s.
func (p Parser[T]) Run(s *Stream) (T, *Failure) {
	return p(s)
}

// RunString applies p to a fresh stream over source.
func (p Parser[T]) RunString(source string) (T, *Failure) {
	return p(NewStream(source))
}

// Return is a parser that consumes nothing and yields v.
func Return[T any](v T) Parser[T] {
	return func(*Stream) (T, *Failure) {
		return v, nil
	}
}

// Map transforms the successful result of p.
func Map[T, U any](p Parser[T], fn func(T) U) Parser[U] {
	return func(s *Stream) (U, *Failure) {
		v, f := p(s)
		if f != nil {
			var zero U
			return zero, f
		}
		return fn(v), nil
	}
}

// MapErr transforms the successful result of p with a function that may
// reject it; a rejection becomes a Failure at the current position.
func MapErr[T, U any](p Parser[T], label string, fn func(T) (U, error)) Parser[U] {
	return func(s *Stream) (U, *Failure) {
		var zero U
		v, f := p(s)
		if f != nil {
			return zero, f
		}
		u, err := fn(v)
		if err != nil {
			return zero, Fail(s, label, "%v", err)
		}
		return u, nil
	}
}

// Label replaces the label of any failure produced by p.
func Label[T any](name string, p Parser[T]) Parser[T] {
	return func(s *Stream) (T, *Failure) {
		v, f := p(s)
		if f != nil {
			relabeled := *f
			relabeled.Label = name
			return v, &relabeled
		}
		return v, nil
	}
}

// Ref is the mutable cell behind a forward reference.
type Ref[T any] struct {
	P Parser[T]
}

// Set installs the real parser behind the reference.
func (r *Ref[T]) Set(p Parser[T]) {
	r.P = p
}

// Forward returns a placeholder parser and the cell it reads from, so that
// recursive grammar rules can refer to each other before both exist.
func Forward[T any]() (*Ref[T], Parser[T]) {
	ref := &Ref[T]{}
	return ref, func(s *Stream) (T, *Failure) {
		if ref.P == nil {
			var zero T
			return zero, Fail(s, "unknown", "Forward reference has not been replaced.")
		}
		return ref.P(s)
	}
}
