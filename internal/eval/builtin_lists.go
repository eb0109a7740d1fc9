package eval

import (
	"math"

	"nickandperla.net/monalisp/internal/form"
)

func listBuiltins() []libraryEntry {
	listOnly := MustSignature(Param("list", form.FlagList))
	dictOnly := MustSignature(Param("dict", form.FlagDictionary))
	return []libraryEntry{
		{"list", MustSignature(RestParam("items", form.FlagAny)), builtinList},
		{"get", MustSignature(Param("index", form.FlagNumber), Param("list", form.FlagList)), builtinGet},
		{"len", listOnly, func(args []form.Tagged) (form.Value, error) {
			return form.Number(len(list(args[0]))), nil
		}},
		{"concat", MustSignature(RestParam("lists", form.FlagList)), builtinConcat},
		{"first", listOnly, func(args []form.Tagged) (form.Value, error) {
			if l := list(args[0]); len(l) > 0 {
				return l[0].Value, nil
			}
			return form.Nil{}, nil
		}},
		{"rest", listOnly, func(args []form.Tagged) (form.Value, error) {
			if l := list(args[0]); len(l) > 1 {
				return append(form.List{}, l[1:]...), nil
			}
			return form.List{}, nil
		}},
		{"cons", MustSignature(Param("item", form.FlagAny), Param("list", form.FlagList)), func(args []form.Tagged) (form.Value, error) {
			return append(form.List{args[0]}, list(args[1])...), nil
		}},
		{"dict", MustSignature(RestParam("entries", form.FlagAny)), builtinDict},
		{"lookup", MustSignature(Param("key", form.FlagAny), Param("dict", form.FlagDictionary)), func(args []form.Tagged) (form.Value, error) {
			if v, ok := args[1].Value.(form.Dict).Lookup(args[0].Value); ok {
				return v.Value, nil
			}
			return form.Nil{}, nil
		}},
		{"keys", dictOnly, func(args []form.Tagged) (form.Value, error) {
			d := args[0].Value.(form.Dict)
			keys := make(form.List, len(d))
			for i, p := range d {
				keys[i] = p.Key
			}
			return keys, nil
		}},
	}
}

func builtinList(args []form.Tagged) (form.Value, error) {
	return append(form.List{}, args...), nil
}

// (get index list) returns nil for an index outside the list.
func builtinGet(args []form.Tagged) (form.Value, error) {
	index, l := number(args[0]), list(args[1])
	if index != math.Trunc(index) || index < 0 || index >= float64(len(l)) {
		return form.Nil{}, nil
	}
	return l[int(index)].Value, nil
}

// (concat lists...) returns nil when given no lists.
func builtinConcat(args []form.Tagged) (form.Value, error) {
	if len(args) == 0 {
		return form.Nil{}, nil
	}
	result := form.List{}
	for _, arg := range args {
		result = append(result, list(arg)...)
	}
	return result, nil
}

func builtinDict(args []form.Tagged) (form.Value, error) {
	if len(args)%2 != 0 {
		return nil, argumentError("dict", "expected key value pairs, got %d arguments", len(args))
	}
	d := make(form.Dict, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		d = append(d, form.Pair{Key: args[i], Value: args[i+1]})
	}
	return d, nil
}
