// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
	"nickandperla.net/monalisp/internal/read"
	"nickandperla.net/monalisp/internal/store"
)

func installPersistence(e *Evaluator) {
	nameOnly := MustSignature(Param("name", form.FlagIdentifier))
	e.Define("persist", NewSpecialForm("persist", nameOnly, specialPersist))
	e.Define("load", NewSpecialForm("load", nameOnly, specialLoad))
	e.Define("history", NewSpecialForm("history", nameOnly, specialHistory))
}

// (persist name) stores a definition that rebuilds the current value of
// name and returns its source text.
func specialPersist(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	if e.store == nil {
		return form.Tagged{}, Failf(pos, "No store is configured.")
	}
	id := args[0].Value.(*form.Identifier)
	v, ok := scope.Lookup(id.Name)
	if !ok {
		return form.Tagged{}, Failf(args[0].Pos, "Cannot persist unbound identifier %s.", id.Name)
	}

	def, f := e.definition(id, v)
	if f != nil {
		return form.Tagged{}, f
	}
	data, err := form.Encode([]form.Tagged{def})
	if err != nil {
		return form.Tagged{}, Failf(args[0].Pos, "Cannot persist %s: %v.", id.Name, err)
	}
	source := def.String()
	if err := e.store.Put(store.Definition{Name: id.Name, Source: source, Forms: data}); err != nil {
		return form.Tagged{}, wrapError(err, pos)
	}
	e.log.Infof("persisted %s", id.Name)
	return form.Tag(form.Text(source), pos), nil
}

// definition builds the (def name ...) form that recreates v.
func (e *Evaluator) definition(id *form.Identifier, v form.Tagged) (form.Tagged, *Failure) {
	var body form.Tagged
	switch c := v.Value.(type) {
	case *Procedure:
		if c.partial {
			return form.Tagged{}, Failf(v.Pos, "Cannot persist partially applied %s.", id.Name)
		}
		body = e.callableSource("fn", c.params, c.body)
	case *Macro:
		if c.partial {
			return form.Tagged{}, Failf(v.Pos, "Cannot persist partially applied %s.", id.Name)
		}
		body = e.callableSource("macro", c.params, c.body)
	case Callable:
		return form.Tagged{}, Failf(v.Pos, "Cannot persist %s %s.", c.Kind(), id.Name)
	case form.List, form.Dict, *form.Identifier:
		body = e.list(e.symbols.Identifier("quote"), form.Strip(v))
	default:
		body = form.Strip(v)
	}
	return e.list(e.symbols.Identifier("def"), form.Lift(id), body), nil
}

func (e *Evaluator) callableSource(kind string, params form.Tagged, body []form.Tagged) form.Tagged {
	items := form.List{form.Lift(e.symbols.Identifier(kind)), form.Strip(params)}
	for _, t := range body {
		items = append(items, form.Strip(t))
	}
	return form.Lift(items)
}

func (e *Evaluator) list(head *form.Identifier, rest ...form.Tagged) form.Tagged {
	return form.Lift(append(form.List{form.Lift(head)}, rest...))
}

// (load name) evaluates the stored definition of name in the global scope.
func specialLoad(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	if e.store == nil {
		return form.Tagged{}, Failf(pos, "No store is configured.")
	}
	id := args[0].Value.(*form.Identifier)
	def, err := e.store.Get(id.Name)
	if err != nil {
		return form.Tagged{}, wrapError(err, pos)
	}
	if def == nil {
		return form.Tagged{}, Failf(args[0].Pos, "No stored definition for %s.", id.Name)
	}

	var forms []form.Tagged
	if len(def.Forms) > 0 {
		forms, err = form.Decode(def.Forms, e.symbols)
	} else {
		forms, err = read.New(e.symbols).Read(def.Source)
	}
	if err != nil {
		return form.Tagged{}, Failf(pos, "Stored definition of %s is unreadable: %v", id.Name, err)
	}
	e.log.Debugf("loading %s from %s", id.Name, def.Source)

	result := form.NilForm
	global := e.Scope()
	for _, t := range forms {
		v, f := e.Evaluate(global, form.Retag(t, pos))
		if f != nil {
			return form.Tagged{}, f
		}
		result = v
	}
	return result, nil
}

// (history name) lists the stored sources of name, newest first.
func specialHistory(e *Evaluator, scope Stack, pos parse.State, args []form.Tagged) (form.Tagged, *Failure) {
	hs, ok := e.store.(store.HistoryStore)
	if !ok {
		return form.Tagged{}, Failf(pos, "No store with history is configured.")
	}
	id := args[0].Value.(*form.Identifier)
	entries, err := hs.GetHistory(id.Name, e.historyLimit)
	if err != nil {
		return form.Tagged{}, wrapError(err, pos)
	}
	versions := make(form.List, len(entries))
	for i, ve := range entries {
		versions[i] = form.Tag(form.Text(ve.Source), pos)
	}
	return form.Tag(versions, pos), nil
}
