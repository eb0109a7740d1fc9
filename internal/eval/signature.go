// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
)

// Unbounded is the MaxArity of a signature with a rest parameter.
const Unbounded = math.MaxInt

// Modifier classifies a parameter.
type Modifier int

const (
	Required Modifier = iota + 1
	Optional
	Rest
)

func (m Modifier) String() string {
	switch m {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Rest:
		return "rest"
	default:
		return "unknown"
	}
}

// Parameter describes one slot of a signature.
type Parameter struct {
	Name     string
	Type     form.Flag
	Modifier Modifier
}

// Param is a required parameter.
func Param(name string, t form.Flag) Parameter {
	return Parameter{Name: name, Type: t, Modifier: Required}
}

// OptionalParam is an optional parameter; it binds nil when absent.
func OptionalParam(name string, t form.Flag) Parameter {
	return Parameter{Name: name, Type: t, Modifier: Optional}
}

// RestParam collects every remaining argument into a list.
func RestParam(name string, t form.Flag) Parameter {
	return Parameter{Name: name, Type: t, Modifier: Rest}
}

var (
	errRequiredOrder = errors.New("required parameters must precede optional and rest parameters")
	errOptionalOrder = errors.New("optional parameters must precede the rest parameter")
	errManyRest      = errors.New("a signature may not contain more than one rest parameter")
)

// Signature is an ordered parameter list: required, then optional, then at
// most one rest parameter.
type Signature struct {
	params   []Parameter
	minArity int
	maxArity int
}

// NewSignature validates parameter ordering and computes arities.
func NewSignature(params ...Parameter) (*Signature, error) {
	sig := &Signature{params: append([]Parameter(nil), params...)}
	var hasOptional, hasRest bool
	for _, p := range params {
		if p.Type == 0 {
			return nil, fmt.Errorf("parameter %q has no type", p.Name)
		}
		switch p.Modifier {
		case Required:
			if hasOptional || hasRest {
				return nil, errRequiredOrder
			}
			sig.minArity++
			sig.maxArity++
		case Optional:
			if hasRest {
				return nil, errOptionalOrder
			}
			hasOptional = true
			sig.maxArity++
		case Rest:
			if hasRest {
				return nil, errManyRest
			}
			hasRest = true
			sig.maxArity = Unbounded
		default:
			return nil, fmt.Errorf("parameter %q has unknown modifier %d", p.Name, p.Modifier)
		}
	}
	return sig, nil
}

// MustSignature is NewSignature for signatures fixed at build time. A bad
// ordering is a programming error and panics.
func MustSignature(params ...Parameter) *Signature {
	sig, err := NewSignature(params...)
	if err != nil {
		panic(fmt.Sprintf("eval: invalid signature: %v", err))
	}
	return sig
}

// Params returns a copy of the parameter list.
func (sig *Signature) Params() []Parameter {
	return append([]Parameter(nil), sig.params...)
}

// MinArity is the number of required parameters.
func (sig *Signature) MinArity() int { return sig.minArity }

// MaxArity is required plus optional parameters, or Unbounded.
func (sig *Signature) MaxArity() int { return sig.maxArity }

// VerifyArity fails when more than MaxArity arguments are given. Too few is
// not an error; the caller curries instead.
func (sig *Signature) VerifyArity(n int, pos parse.State) *Failure {
	if n > sig.maxArity {
		return Failf(pos, "Too many arguments. Expected at most %d, got %d.", sig.maxArity, n)
	}
	return nil
}

// VerifyTypes checks each argument's flag against its parameter. Arguments
// past the declared list are checked against the last (rest) parameter.
func (sig *Signature) VerifyTypes(args []form.Tagged) *Failure {
	if len(sig.params) == 0 {
		return nil
	}
	for i, arg := range args {
		p := sig.params[min(i, len(sig.params)-1)]
		if !p.Type.Accepts(arg.Flag()) {
			return Failf(arg.Pos, "Incorrect type for %q parameter. Expected %s, got %s.",
				p.Name, p.Type, arg.Flag())
		}
	}
	return nil
}

// Bind builds a frame binding each parameter to its argument. Missing
// optionals bind nil; a rest parameter binds the list of what remains.
func (sig *Signature) Bind(args []form.Tagged) *Scope {
	frame := NewScope()
	for i, p := range sig.params {
		if p.Modifier == Rest {
			rest := form.List{}
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			frame.DefineName(p.Name, form.Lift(rest))
			break
		}
		if i < len(args) {
			frame.DefineName(p.Name, args[i])
		} else {
			frame.DefineName(p.Name, form.NilForm)
		}
	}
	return frame
}

// BindPrefix binds only the first len(args) parameters, for currying.
func (sig *Signature) BindPrefix(args []form.Tagged) *Scope {
	frame := NewScope()
	for i := 0; i < len(args) && i < len(sig.params); i++ {
		frame.DefineName(sig.params[i].Name, args[i])
	}
	return frame
}

// Drop returns the signature without its first n parameters.
func (sig *Signature) Drop(n int) (*Signature, error) {
	if n > len(sig.params) {
		n = len(sig.params)
	}
	return NewSignature(sig.params[n:]...)
}

// String renders the signature as a parameter list, e.g. (a :opt b :rest c).
func (sig *Signature) String() string {
	parts := make([]string, 0, len(sig.params))
	for _, p := range sig.params {
		var part string
		switch p.Modifier {
		case Optional:
			part = ":opt " + p.Name
		case Rest:
			part = ":rest " + p.Name
		default:
			part = p.Name
		}
		if p.Type != form.FlagAny {
			part += "<" + p.Type.String() + ">"
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// ParseParameters builds a signature from a fn or macro parameter list.
// Identifiers are required; :opt and :rest mark the identifier that follows.
func ParseParameters(list form.Tagged) (*Signature, *Failure) {
	items, ok := list.Value.(form.List)
	if !ok {
		return nil, Failf(list.Pos, "Parameter list must be a List, got %s.", list.Flag())
	}
	params := make([]Parameter, 0, len(items))
	for i := 0; i < len(items); i++ {
		item := items[i]
		switch v := item.Value.(type) {
		case *form.Identifier:
			params = append(params, Param(v.Name, form.FlagAny))
		case *form.Keyword:
			var modifier Modifier
			switch v.Name {
			case "opt":
				modifier = Optional
			case "rest":
				modifier = Rest
			default:
				return nil, Failf(item.Pos, "Unknown parameter keyword %s.", v)
			}
			i++
			if i >= len(items) {
				return nil, Failf(item.Pos, "Identifier must follow modifier key %s.", v)
			}
			id, ok := items[i].Value.(*form.Identifier)
			if !ok {
				return nil, Failf(items[i].Pos, "Invalid parameter %s.", items[i])
			}
			params = append(params, Parameter{Name: id.Name, Type: form.FlagAny, Modifier: modifier})
		default:
			return nil, Failf(item.Pos, "Invalid parameter %s.", item)
		}
	}
	sig, err := NewSignature(params...)
	if err != nil {
		return nil, Failf(list.Pos, "Invalid parameter list: %v.", err)
	}
	return sig, nil
}
