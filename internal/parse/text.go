// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parse

import (
	"strings"
	"unicode"
)

// Satisfy consumes one rune if pred holds for it; otherwise it fails without
// consuming anything.
func Satisfy(pred func(rune) bool, label string) Parser[rune] {
	return func(s *Stream) (rune, *Failure) {
		r := s.Peek()
		if r != EOF && pred(r) {
			return s.Next(), nil
		}
		if r == EOF {
			return 0, Fail(s, label, "Unexpected end of input.")
		}
		return 0, Fail(s, label, "Unexpected %q.", r)
	}
}

// Char parses exactly c.
func Char(c rune) Parser[rune] {
	return Satisfy(func(r rune) bool { return r == c }, string(c))
}

// NoneOf parses any rune not contained in chars.
func NoneOf(chars, label string) Parser[rune] {
	return Satisfy(func(r rune) bool { return !strings.ContainsRune(chars, r) }, label)
}

// String parses the literal text.
func String(text string) Parser[string] {
	parsers := make([]Parser[rune], 0, len(text))
	for _, r := range text {
		parsers = append(parsers, Char(r))
	}
	return Label(text, Runes(Sequence(parsers...)))
}

// Whitespace parses a single whitespace rune.
var Whitespace = Satisfy(unicode.IsSpace, "whitespace")

// AnySpace parses zero or more whitespace runes.
var AnySpace = Label("any whitespace", Runes(Star(Whitespace)))

// SomeSpace parses one or more whitespace runes.
var SomeSpace = Label("some whitespace", Runes(Plus(Whitespace)))

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsHexDigit reports whether r is an ASCII hexadecimal digit.
func IsHexDigit(r rune) bool {
	return IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// IsOctalDigit reports whether r is an octal digit.
func IsOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

// IsBinaryDigit reports whether r is 0 or 1.
func IsBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}
