// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package form defines monalisp values and the tagged wrapper that carries
// a value's type flag and source position through reading and evaluation.
package form

import (
	"math"
	"strings"

	"nickandperla.net/monalisp/internal/parse"
)

// Flag is a bitmask identifying a value variant. Constraints may OR several
// flags together; compatibility is a non-zero AND.
type Flag uint16

const (
	FlagNil Flag = 1 << iota
	FlagBoolean
	FlagNumber
	FlagString
	FlagIdentifier
	FlagKeyword
	FlagList
	FlagDictionary
	FlagCallable

	FlagAny = FlagNil | FlagBoolean | FlagNumber | FlagString | FlagIdentifier |
		FlagKeyword | FlagList | FlagDictionary | FlagCallable
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagNil, "Nil"},
	{FlagBoolean, "Boolean"},
	{FlagNumber, "Number"},
	{FlagString, "String"},
	{FlagIdentifier, "Identifier"},
	{FlagKeyword, "Keyword"},
	{FlagList, "List"},
	{FlagDictionary, "Dictionary"},
	{FlagCallable, "Callable"},
}

// Accepts reports whether a value flagged v satisfies constraint f.
func (f Flag) Accepts(v Flag) bool {
	return f&v != 0
}

// String names the flag, joining unions with " | ".
func (f Flag) String() string {
	if f == FlagAny {
		return "Any"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, " | ")
}

// Value is implemented by every form variant.
type Value interface {
	// Flag returns the single bit identifying the variant.
	Flag() Flag
	// String returns the printed representation of the value.
	String() string
}

// Callable is a Value that can be applied. Implementations live in the
// evaluator; this package only needs to recognize and print them.
type Callable interface {
	Value
	Name() string
}

// Nil is the absent value.
type Nil struct{}

// Bool is a boolean value.
type Bool bool

// Number is a 64-bit float.
type Number float64

// Text is a string value.
type Text string

// Identifier is an interned symbol name. Two identifiers from the same
// Symbols table are equal iff they are the same pointer.
type Identifier struct {
	Name string
}

// Keyword is an interned keyword. Name excludes the leading colon.
type Keyword struct {
	Name string
}

// List is an ordered sequence of tagged forms.
type List []Tagged

// Pair is one dictionary entry.
type Pair struct {
	Key   Tagged
	Value Tagged
}

// Dict is an insertion-ordered dictionary of tagged keys and values.
type Dict []Pair

func (Nil) Flag() Flag         { return FlagNil }
func (Bool) Flag() Flag        { return FlagBoolean }
func (Number) Flag() Flag      { return FlagNumber }
func (Text) Flag() Flag        { return FlagString }
func (*Identifier) Flag() Flag { return FlagIdentifier }
func (*Keyword) Flag() Flag    { return FlagKeyword }
func (List) Flag() Flag        { return FlagList }
func (Dict) Flag() Flag        { return FlagDictionary }

// Lookup returns the value stored under key.
func (d Dict) Lookup(key Value) (Tagged, bool) {
	for _, p := range d {
		if Equal(p.Key.Value, key) {
			return p.Value, true
		}
	}
	return Tagged{}, false
}

// Tagged pairs a value with the source position it came from. The type flag
// is always derived from the value.
type Tagged struct {
	Value Value
	Pos   parse.State
}

// Tag wraps v with a source position.
func Tag(v Value, pos parse.State) Tagged {
	if v == nil {
		v = Nil{}
	}
	return Tagged{Value: v, Pos: pos}
}

// Lift wraps v with no source position.
func Lift(v Value) Tagged {
	return Tag(v, parse.State{})
}

// NilForm is the untagged nil value.
var NilForm = Lift(Nil{})

// Flag returns the flag of the wrapped value.
func (t Tagged) Flag() Flag {
	if t.Value == nil {
		return FlagNil
	}
	return t.Value.Flag()
}

func (t Tagged) String() string {
	if t.Value == nil {
		return Nil{}.String()
	}
	return t.Value.String()
}

// IsNil reports whether t holds nil.
func (t Tagged) IsNil() bool {
	return t.Flag() == FlagNil
}

// Strip removes source positions from t and everything nested in it.
func Strip(t Tagged) Tagged {
	return Retag(t, parse.State{})
}

// Retag replaces the source position of t and everything nested in it.
func Retag(t Tagged, pos parse.State) Tagged {
	switch v := t.Value.(type) {
	case List:
		items := make(List, len(v))
		for i, item := range v {
			items[i] = Retag(item, pos)
		}
		return Tagged{Value: items, Pos: pos}
	case Dict:
		pairs := make(Dict, len(v))
		for i, p := range v {
			pairs[i] = Pair{Key: Retag(p.Key, pos), Value: Retag(p.Value, pos)}
		}
		return Tagged{Value: pairs, Pos: pos}
	default:
		return Tag(t.Value, pos)
	}
}

// Truthy reports whether v counts as true in a conditional. Nil, false,
// zero, NaN and the empty string are false.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return bool(x)
	case Number:
		return x != 0 && !math.IsNaN(float64(x))
	case Text:
		return x != ""
	default:
		return true
	}
}

// Equal compares two values structurally. Callables compare by identity.
func Equal(a, b Value) bool {
	if a == nil {
		a = Nil{}
	}
	if b == nil {
		b = Nil{}
	}
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && (x == y || x.Name == y.Name)
	case *Keyword:
		y, ok := b.(*Keyword)
		return ok && (x == y || x.Name == y.Name)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	case Dict:
		y, ok := b.(Dict)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i].Key.Value, y[i].Key.Value) || !Equal(x[i].Value.Value, y[i].Value.Value) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
