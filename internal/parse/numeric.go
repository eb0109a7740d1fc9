// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parse

import (
	"errors"
	"strconv"
)

var (
	minus = Map(Char('-'), func(rune) string { return "-" })
	dot   = Map(Char('.'), func(rune) string { return "." })
	sign  = Optional(minus)
)

func digitRun(pred func(rune) bool, label string) Parser[string] {
	return Label(label, Runes(Plus(Satisfy(pred, label))))
}

// Digits parses one or more decimal digits.
var Digits = digitRun(IsDigit, "integer")

// HexDigits parses one or more hexadecimal digits.
var HexDigits = digitRun(IsHexDigit, "hex digits")

// OctalDigits parses one or more octal digits.
var OctalDigits = digitRun(IsOctalDigit, "octal digits")

// BinaryDigits parses one or more binary digits.
var BinaryDigits = digitRun(IsBinaryDigit, "binary digits")

// Int parses a base ten integer with an optional leading minus.
var Int = MapErr(Concat(Sequence(sign, Digits)), "integer", func(text string) (int64, error) {
	return strconv.ParseInt(text, 10, 64)
})

// Float parses an optional minus, a digit run and an optional fractional
// part. The fraction is only consumed when a digit follows the dot.
var Float = Label("float", MapErr(
	Concat(Sequence(sign, Digits, Optional(Attempt(Concat(Sequence(dot, Digits)))))),
	"float",
	parseFloat,
))

func parseFloat(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if errors.Is(err, strconv.ErrRange) {
		// Out of range literals saturate to ±Inf or 0.
		return v, nil
	}
	return v, err
}

// Radix parses an optional minus, the literal prefix and a run of digits in
// the given base.
func Radix(prefix string, digits Parser[string], base int, label string) Parser[float64] {
	var marker Parser[string] = Return("")
	if prefix != "" {
		marker = String(prefix)
	}
	body := Pair(sign, Right(marker, digits))
	return Label(label, MapErr(body, label, func(t Tuple[string, string]) (float64, error) {
		n, err := strconv.ParseUint(t.Second, base, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, err
		}
		v := float64(n)
		if t.First == "-" {
			v = -v
		}
		return v, nil
	}))
}

// Hex parses a signed hexadecimal number without prefix.
var Hex = Radix("", HexDigits, 16, "hexadecimal number")

// Octal parses a signed octal number without prefix.
var Octal = Radix("", OctalDigits, 8, "octal number")

// Binary parses a signed binary number without prefix.
var Binary = Radix("", BinaryDigits, 2, "binary number")
