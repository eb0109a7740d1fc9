package eval

import (
	"nickandperla.net/monalisp/internal/form"
)

var predicateSignature = MustSignature(Param("form", form.FlagAny))

func logicBuiltins() []libraryEntry {
	return []libraryEntry{
		{"not", predicateSignature, predicate(func(v form.Value) bool { return !form.Truthy(v) })},
		{"=", MustSignature(Param("a", form.FlagAny), Param("b", form.FlagAny)), func(args []form.Tagged) (form.Value, error) {
			return form.Bool(form.Equal(args[0].Value, args[1].Value)), nil
		}},
		{"nil?", predicateSignature, isFlag(form.FlagNil)},
		{"bool?", predicateSignature, isFlag(form.FlagBoolean)},
		{"number?", predicateSignature, isFlag(form.FlagNumber)},
		{"string?", predicateSignature, isFlag(form.FlagString)},
		{"id?", predicateSignature, isFlag(form.FlagIdentifier)},
		{"key?", predicateSignature, isFlag(form.FlagKeyword)},
		{"list?", predicateSignature, isFlag(form.FlagList)},
		{"dict?", predicateSignature, isFlag(form.FlagDictionary)},
		{"fn?", predicateSignature, isFlag(form.FlagCallable)},
	}
}

func predicate(fn func(form.Value) bool) BuiltinFunc {
	return func(args []form.Tagged) (form.Value, error) {
		return form.Bool(fn(args[0].Value)), nil
	}
}

func isFlag(flag form.Flag) BuiltinFunc {
	return predicate(func(v form.Value) bool {
		return form.Lift(v).Flag() == flag
	})
}
