// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parse

import "strings"

// Sequence runs parsers in order and collects their results. It stops at the
// first failure without rewinding; wrap it in Attempt for rollback.
func Sequence[T any](parsers ...Parser[T]) Parser[[]T] {
	return func(s *Stream) ([]T, *Failure) {
		results := make([]T, 0, len(parsers))
		for _, p := range parsers {
			v, f := p(s)
			if f != nil {
				return nil, f
			}
			results = append(results, v)
		}
		return results, nil
	}
}

// Choice returns the first success among parsers, or the last failure.
func Choice[T any](parsers ...Parser[T]) Parser[T] {
	return func(s *Stream) (T, *Failure) {
		var (
			v T
			f *Failure
		)
		for _, p := range parsers {
			v, f = p(s)
			if f == nil {
				return v, nil
			}
		}
		if f == nil {
			f = Fail(s, "choice", "No alternatives.")
		}
		return v, f
	}
}

// Star applies p zero or more times. It never fails.
func Star[T any](p Parser[T]) Parser[[]T] {
	return func(s *Stream) ([]T, *Failure) {
		var results []T
		for {
			v, f := p(s)
			if f != nil {
				return results, nil
			}
			results = append(results, v)
		}
	}
}

// Plus applies p one or more times. It fails iff the first attempt fails.
func Plus[T any](p Parser[T]) Parser[[]T] {
	return func(s *Stream) ([]T, *Failure) {
		first, f := p(s)
		if f != nil {
			return nil, f
		}
		results := []T{first}
		for {
			v, f := p(s)
			if f != nil {
				return results, nil
			}
			results = append(results, v)
		}
	}
}

// Optional applies p once, yielding the zero value of T when p fails.
func Optional[T any](p Parser[T]) Parser[T] {
	return func(s *Stream) (T, *Failure) {
		v, f := p(s)
		if f != nil {
			var zero T
			return zero, nil
		}
		return v, nil
	}
}

// Attempt runs p under a checkpoint and rewinds the stream if p fails.
func Attempt[T any](p Parser[T]) Parser[T] {
	return func(s *Stream) (T, *Failure) {
		s.Save()
		v, f := p(s)
		if f != nil {
			s.Restore()
			return v, f
		}
		s.Discard()
		return v, nil
	}
}

// Series parses zero or more elements separated by sep. It never fails.
func Series[T, S any](element Parser[T], sep Parser[S]) Parser[[]T] {
	next := Right(sep, element)
	return func(s *Stream) ([]T, *Failure) {
		var results []T
		v, f := element(s)
		for f == nil {
			results = append(results, v)
			v, f = next(s)
		}
		return results, nil
	}
}

// Right runs first then second, keeping only the second result.
func Right[A, B any](first Parser[A], second Parser[B]) Parser[B] {
	return func(s *Stream) (B, *Failure) {
		if _, f := first(s); f != nil {
			var zero B
			return zero, f
		}
		return second(s)
	}
}

// Left runs first then second, keeping only the first result.
func Left[A, B any](first Parser[A], second Parser[B]) Parser[A] {
	return func(s *Stream) (A, *Failure) {
		v, f := first(s)
		if f != nil {
			return v, f
		}
		if _, f := second(s); f != nil {
			var zero A
			return zero, f
		}
		return v, nil
	}
}

// Tuple holds the results of Pair.
type Tuple[A, B any] struct {
	First  A
	Second B
}

// Pair runs both parsers and keeps both results.
func Pair[A, B any](first Parser[A], second Parser[B]) Parser[Tuple[A, B]] {
	return func(s *Stream) (Tuple[A, B], *Failure) {
		a, f := first(s)
		if f != nil {
			return Tuple[A, B]{}, f
		}
		b, f := second(s)
		if f != nil {
			return Tuple[A, B]{}, f
		}
		return Tuple[A, B]{First: a, Second: b}, nil
	}
}

// Between discards open and close, keeping the result of middle.
func Between[O, T, C any](open Parser[O], middle Parser[T], close Parser[C]) Parser[T] {
	return Left(Right(open, middle), close)
}

// Surround runs pad on both sides of p.
func Surround[T, P any](p Parser[T], pad Parser[P]) Parser[T] {
	return Between(pad, p, pad)
}

// Completion applies p until the stream is exhausted, failing on the first
// failure.
func Completion[T any](p Parser[T]) Parser[[]T] {
	return func(s *Stream) ([]T, *Failure) {
		var results []T
		for !s.IsDone() {
			v, f := p(s)
			if f != nil {
				return nil, f
			}
			results = append(results, v)
		}
		return results, nil
	}
}

// Runes joins a parsed rune slice into a string.
func Runes(p Parser[[]rune]) Parser[string] {
	return Map(p, func(rs []rune) string { return string(rs) })
}

// Concat joins parsed strings.
func Concat(p Parser[[]string]) Parser[string] {
	return Map(p, func(parts []string) string { return strings.Join(parts, "") })
}
