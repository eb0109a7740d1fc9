// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package read

import (
	"strings"
	"unicode"

	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
)

const identifierPunctuation = "+-*/=<>&|!?$_"

// IsIdentifierStart reports whether r may begin an identifier.
func IsIdentifierStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		strings.ContainsRune(identifierPunctuation, r) ||
		unicode.Is(unicode.Greek, r)
}

// IsIdentifierRest reports whether r may continue an identifier or keyword.
func IsIdentifierRest(r rune) bool {
	return IsIdentifierStart(r) || parse.IsDigit(r)
}

// grammar is one assembled set of parsers. It is rebuilt for every read so
// that the nesting counter is private to that read.
type grammar struct {
	r     *Reader
	depth int
	expr  parse.Parser[form.Tagged]
	// fatal is the first failure that must end the read even if a
	// combinator such as Series would otherwise swallow it.
	fatal *parse.Failure

	number     parse.Parser[form.Value]
	text       parse.Parser[form.Value]
	identifier parse.Parser[form.Value]
	keyword    parse.Parser[form.Value]
}

func (r *Reader) newGrammar() *grammar {
	g := &grammar{r: r}
	g.number = g.numberParser()
	g.text = parse.Label("string", parse.Map(
		parse.Between(parse.Char('"'), parse.Runes(parse.Star(parse.NoneOf(`"`, "string"))), parse.Char('"')),
		func(s string) form.Value { return form.Text(s) },
	))
	g.identifier = parse.Label("identifier", parse.Map(
		parse.Pair(
			parse.Satisfy(IsIdentifierStart, "identifier"),
			parse.Runes(parse.Star(parse.Satisfy(IsIdentifierRest, "identifier"))),
		),
		func(t parse.Tuple[rune, string]) form.Value { return g.literalOrIdentifier(string(t.First) + t.Second) },
	))
	g.keyword = parse.Label("keyword", parse.Attempt(parse.Map(
		parse.Right(parse.Char(':'), parse.Runes(parse.Plus(parse.Satisfy(IsIdentifierRest, "keyword")))),
		func(name string) form.Value { return r.symbols.Keyword(name) },
	)))
	g.expr = g.expression(nil)
	return g
}

func (g *grammar) literalOrIdentifier(name string) form.Value {
	switch name {
	case "nil":
		return form.Nil{}
	case "true":
		return form.Bool(true)
	case "false":
		return form.Bool(false)
	}
	return g.r.symbols.Identifier(name)
}

func (g *grammar) fail(s *parse.Stream, label, format string, args ...any) *parse.Failure {
	f := parse.Fail(s, label, format, args...)
	if g.fatal == nil {
		g.fatal = f
	}
	return f
}

func (g *grammar) numberParser() parse.Parser[form.Value] {
	toNumber := func(f float64) form.Value { return form.Number(f) }
	float := parse.Map(parse.Attempt(parse.Float), toNumber)
	if !g.r.radix {
		return float
	}
	return parse.Choice(
		parse.Map(parse.Attempt(parse.Radix("0x", parse.HexDigits, 16, "hexadecimal number")), toNumber),
		parse.Map(parse.Attempt(parse.Radix("0o", parse.OctalDigits, 8, "octal number")), toNumber),
		parse.Map(parse.Attempt(parse.Radix("0b", parse.BinaryDigits, 2, "binary number")), toNumber),
		float,
	)
}

// expression assembles the recursive expression rule. When args is non-nil
// the rule also accepts bullet macro arguments, for every nested list and
// dictionary, sharing args' counter.
func (g *grammar) expression(args *bulletArgs) parse.Parser[form.Tagged] {
	ref, expr := parse.Forward[form.Tagged]()

	macro := g.macro(expr)
	atom := parse.Label("atom", parse.Choice(g.number, g.text, g.identifier, g.keyword))
	alternatives := []parse.Parser[form.Value]{
		atom,
		g.nested('(', "list", g.list(expr)),
		g.nested('{', "dictionary", g.dictionary(expr)),
	}
	if args != nil {
		alternatives = append(alternatives, args.parser(g))
	}
	rest := parse.Choice(alternatives...)

	// A reader macro commits on its dispatch character.
	ref.Set(tag(func(s *parse.Stream) (form.Value, *parse.Failure) {
		if isMacroChar(s.Peek()) {
			return macro(s)
		}
		return rest(s)
	}))
	return expr
}

// tag wraps a value parser so its result carries the start position.
func tag(p parse.Parser[form.Value]) parse.Parser[form.Tagged] {
	return func(s *parse.Stream) (form.Tagged, *parse.Failure) {
		start := s.State()
		v, f := p(s)
		if f != nil {
			return form.Tagged{}, f
		}
		return form.Tag(v, start), nil
	}
}

// nested bounds the depth of p, which is entered only when the next rune is
// open.
func (g *grammar) nested(open rune, label string, p parse.Parser[form.Value]) parse.Parser[form.Value] {
	return func(s *parse.Stream) (form.Value, *parse.Failure) {
		if s.Peek() == open {
			if g.r.maxDepth > 0 && g.depth >= g.r.maxDepth {
				return nil, g.fail(s, label, "Maximum nesting depth of %d exceeded.", g.r.maxDepth)
			}
			g.depth++
			defer func() { g.depth-- }()
		}
		return p(s)
	}
}

func (g *grammar) listOf(element parse.Parser[form.Tagged]) parse.Parser[[]form.Tagged] {
	open := parse.Pair(parse.Char('('), parse.AnySpace)
	closer := parse.Pair(parse.AnySpace, parse.Char(')'))
	return parse.Label("list", parse.Between(open, parse.Series(element, parse.SomeSpace), closer))
}

func (g *grammar) list(element parse.Parser[form.Tagged]) parse.Parser[form.Value] {
	return parse.Map(g.listOf(element), func(items []form.Tagged) form.Value {
		return form.List(items)
	})
}

func (g *grammar) dictionary(element parse.Parser[form.Tagged]) parse.Parser[form.Value] {
	open := parse.Pair(parse.Char('{'), parse.AnySpace)
	closer := parse.Pair(parse.AnySpace, parse.Char('}'))
	spaceOrComma := parse.Plus(parse.Satisfy(func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}, "dictionary"))
	value := parse.Right(parse.SomeSpace, element)
	// A key without a value ends the read; Series would otherwise drop it.
	var entry parse.Parser[form.Pair] = func(s *parse.Stream) (form.Pair, *parse.Failure) {
		key, f := element(s)
		if f != nil {
			return form.Pair{}, f
		}
		v, f := value(s)
		if f != nil {
			return form.Pair{}, g.fail(s, "dictionary", "Missing value for key %s.", key)
		}
		return form.Pair{Key: key, Value: v}, nil
	}
	return parse.Label("dictionary", parse.Map(
		parse.Between(open, parse.Series(entry, spaceOrComma), closer),
		func(pairs []form.Pair) form.Value { return form.Dict(pairs) },
	))
}
