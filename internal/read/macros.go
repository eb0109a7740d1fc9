// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package read

import (
	"fmt"
	"strconv"

	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
)

// Reader macro dispatch characters.
const (
	QuoteChar  = '\''
	BulletChar = '•'
)

func isMacroChar(r rune) bool {
	return r == QuoteChar || r == BulletChar
}

// readerMacro expands the text following its dispatch character. start is
// the position of the dispatch character itself.
type readerMacro func(s *parse.Stream, start parse.State) (form.Value, *parse.Failure)

// macro dispatches on the next character through the reader macro table.
// expr is the expression rule macros recurse into.
func (g *grammar) macro(expr parse.Parser[form.Tagged]) parse.Parser[form.Value] {
	table := map[rune]readerMacro{
		QuoteChar:  g.quote(expr),
		BulletChar: g.bullet(),
	}
	return func(s *parse.Stream) (form.Value, *parse.Failure) {
		m, ok := table[s.Peek()]
		if !ok {
			if s.IsDone() {
				return nil, parse.Fail(s, "reader macro", "Unexpected end of input.")
			}
			return nil, parse.Fail(s, "reader macro", "Unexpected %q.", s.Peek())
		}
		if g.r.maxDepth > 0 && g.depth >= g.r.maxDepth {
			return nil, g.fail(s, "reader macro", "Maximum nesting depth of %d exceeded.", g.r.maxDepth)
		}
		g.depth++
		defer func() { g.depth-- }()

		start := s.State()
		s.Next()
		return m(s, start)
	}
}

// quote expands 'x into (quote x).
func (g *grammar) quote(expr parse.Parser[form.Tagged]) readerMacro {
	return func(s *parse.Stream, start parse.State) (form.Value, *parse.Failure) {
		quoted, f := expr(s)
		if f != nil {
			return nil, f
		}
		return form.List{form.Tag(g.r.symbols.Identifier("quote"), start), quoted}, nil
	}
}

// bullet expands •(f . .) into (fn (arg1 arg2) (f arg1 arg2)). Each
// application has its own argument counter, shared by every list and
// dictionary nested inside it.
func (g *grammar) bullet() readerMacro {
	return func(s *parse.Stream, start parse.State) (form.Value, *parse.Failure) {
		args := &bulletArgs{}
		bodyStart := s.State()
		items, f := g.listOf(g.expression(args))(s)
		if args.err != nil {
			return nil, args.err
		}
		if f != nil {
			return nil, f
		}

		params := make(form.List, args.count)
		for i := range params {
			params[i] = form.Tag(args.identifier(g.r.symbols, i+1), start)
		}
		return form.List{
			form.Tag(g.r.symbols.Identifier("fn"), start),
			form.Tag(params, start),
			form.Tag(form.List(items), bodyStart),
		}, nil
	}
}

// MaxBulletArgs bounds the parameters of one bullet application.
const MaxBulletArgs = 255

// bulletArgs tracks the arguments seen in one bullet application. Indexed
// (.N) and unindexed (.) arguments may not be mixed.
type bulletArgs struct {
	count     int
	indexed   bool
	unindexed bool
	// err is the first mixing violation. Series swallows element failures,
	// so the violation is kept here and reported once the list is read.
	err *parse.Failure
}

func (a *bulletArgs) identifier(syms *form.Symbols, n int) *form.Identifier {
	return syms.Identifier(fmt.Sprintf("arg%d", n))
}

func (a *bulletArgs) parser(g *grammar) parse.Parser[form.Value] {
	const label = "bullet macro (•)"
	indexed := parse.Attempt(parse.Right(parse.Char('.'), parse.Digits))
	unindexed := parse.Map(parse.Char('.'), func(rune) string { return "" })
	arg := parse.Label(label, parse.Choice(indexed, unindexed))

	return func(s *parse.Stream) (form.Value, *parse.Failure) {
		digits, f := arg(s)
		if f != nil {
			return nil, f
		}
		n := -1
		if digits != "" {
			var err error
			n, err = strconv.Atoi(digits)
			if err != nil || n > MaxBulletArgs {
				return nil, a.fail(g, s, label, fmt.Sprintf("Argument index %s exceeds the limit of %d.", digits, MaxBulletArgs))
			}
		}
		switch {
		case n < 0 && a.indexed:
			return nil, a.fail(g, s, label, "Unindexed arguments may not follow indexed arguments.")
		case n < 0:
			if a.count == MaxBulletArgs {
				return nil, a.fail(g, s, label, fmt.Sprintf("More than %d arguments.", MaxBulletArgs))
			}
			a.unindexed = true
			a.count++
			n = a.count
		case n == 0:
			return nil, a.fail(g, s, label, "Argument indices start at 1.")
		case a.unindexed:
			return nil, a.fail(g, s, label, "Indexed arguments may not follow unindexed arguments.")
		default:
			a.indexed = true
			if n > a.count {
				a.count = n
			}
		}
		return a.identifier(g.r.symbols, n), nil
	}
}

func (a *bulletArgs) fail(g *grammar, s *parse.Stream, label, message string) *parse.Failure {
	f := g.fail(s, label, "%s", message)
	if a.err == nil {
		a.err = f
	}
	return f
}
